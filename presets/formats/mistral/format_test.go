// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package mistral

import (
	"testing"

	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
	"github.com/stretchr/testify/assert"
)

func TestRemap(t *testing.T) {
	testcases := map[string]struct {
		fields   map[string]any
		expected Record
	}{
		"All fields present": {
			fields:   map[string]any{"instruction": "Translate", "input": "Hello", "output": "Bonjour", "extra": "x"},
			expected: Record{Instruction: "Translate", Input: "Hello", Output: "Bonjour"},
		},
		"Missing fields default to empty": {
			fields:   map[string]any{"output": "Bonjour"},
			expected: Record{Output: "Bonjour"},
		},
	}

	f := plugin.KaitoFormatRegister.MustGet(consts.ModelTypeMistral)
	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.Remap(dataset.NewRecord(tc.fields)))
		})
	}
	assert.Equal(t, []string{"instruction", "input", "output"}, f.RequiredFields())
}
