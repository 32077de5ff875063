// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package model

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
)

// Format is the serialized schema a model type expects for fine-tuning data.
type Format interface {
	// RequiredFields lists, in declared order, the top-level fields every
	// serialized record must carry.
	RequiredFields() []string
	// Remap converts a generic record into the model's shape. Absent source
	// fields become empty strings.
	Remap(r dataset.Record) any
}
