// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package mistral

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
)

func init() {
	plugin.KaitoFormatRegister.Register(&plugin.Registration{
		Name:     consts.ModelTypeMistral,
		Instance: &mistralFormat,
	})
}

var mistralFormat mistral

// Record is the instruction-tuning shape used for Mistral fine-tuning.
type Record struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

type mistral struct{}

func (*mistral) RequiredFields() []string {
	return []string{"instruction", "input", "output"}
}

func (*mistral) Remap(r dataset.Record) any {
	return Record{
		Instruction: r.Text("instruction"),
		Input:       r.Text("input"),
		Output:      r.Text("output"),
	}
}
