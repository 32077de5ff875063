// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package gemini

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
)

func init() {
	plugin.KaitoFormatRegister.Register(&plugin.Registration{
		Name:     consts.ModelTypeGemini,
		Instance: &geminiFormat,
	})
}

var geminiFormat gemini

type Record struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Context    string `json:"context"`
}

type gemini struct{}

func (*gemini) RequiredFields() []string {
	return []string{"prompt", "completion"}
}

// Remap maps input to prompt and output to completion.
func (*gemini) Remap(r dataset.Record) any {
	return Record{
		Prompt:     r.Text("input"),
		Completion: r.Text("output"),
		Context:    r.Text("context"),
	}
}
