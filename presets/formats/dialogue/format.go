// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package dialogue

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
)

func init() {
	plugin.KaitoFormatRegister.Register(&plugin.Registration{
		Name:     consts.ModelTypeDialogue,
		Instance: &dialogueFormat,
	})
}

var dialogueFormat dialogue

// Record carries the dialogue value through untouched; it may be a string
// or a list of turns.
type Record struct {
	Dialogue any `json:"dialogue"`
}

type dialogue struct{}

func (*dialogue) RequiredFields() []string {
	return []string{"dialogue"}
}

func (*dialogue) Remap(r dataset.Record) any {
	v, ok := r.Get("dialogue")
	if !ok || v == nil {
		v = ""
	}
	return Record{Dialogue: v}
}
