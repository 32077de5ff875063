// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package utils

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kaito-project/datasetkit/pkg/utils/consts"
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

func MergeConfigMaps(baseMap, overrideMap map[string]string) map[string]string {
	merged := make(map[string]string)
	for k, v := range baseMap {
		merged[k] = v
	}

	// Override with values from overrideMap
	for k, v := range overrideMap {
		merged[k] = v
	}

	return merged
}

// BuildCmdStr appends runParams to baseCommand as --key=value flags, sorted
// by key. Empty values render as bare --key switches.
func BuildCmdStr(baseCommand string, runParams map[string]string) string {
	keys := make([]string, 0, len(runParams))
	for k := range runParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(baseCommand)
	for _, key := range keys {
		if value := runParams[key]; value == "" {
			fmt.Fprintf(&sb, " --%s", key)
		} else {
			fmt.Fprintf(&sb, " --%s=%s", key, value)
		}
	}
	return sb.String()
}

func ShellCmd(command string) []string {
	return []string{
		"/bin/sh",
		"-c",
		command,
	}
}

// GetReleaseNamespace returns the namespace from the environment, falling back
// to the service account namespace when running in a pod.
func GetReleaseNamespace() (string, error) {
	if ns := os.Getenv(consts.DefaultReleaseNamespaceEnvVar); ns != "" {
		return ns, nil
	}
	data, err := os.ReadFile(serviceAccountNamespaceFile)
	if err != nil {
		return "", fmt.Errorf("failed to determine release namespace from env %s or service account: %w", consts.DefaultReleaseNamespaceEnvVar, err)
	}
	return strings.TrimSpace(string(data)), nil
}
