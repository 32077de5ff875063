// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package config

import (
	"bytes"

	"gopkg.in/yaml.v2"
	utiljson "k8s.io/apimachinery/pkg/util/json"
)

// decode accepts JSON objects and YAML documents. JSON is routed through a
// JSON decoder because tab indentation is not valid YAML.
func decode(data []byte, out interface{}) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return utiljson.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(data, out)
}
