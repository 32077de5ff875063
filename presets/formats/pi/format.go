// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package pi

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
)

func init() {
	plugin.KaitoFormatRegister.Register(&plugin.Registration{
		Name:     consts.ModelTypePi,
		Instance: &piFormat,
	})
}

const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

var piFormat pi

// Turn is a single message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is a human/assistant turn pair.
type Record struct {
	Conversations []Turn `json:"conversations"`
}

type pi struct{}

// RequiredFields describes the serialized shape, so a formatted file
// validates cleanly against its own model type.
func (*pi) RequiredFields() []string {
	return []string{"conversations"}
}

func (*pi) Remap(r dataset.Record) any {
	return Record{
		Conversations: []Turn{
			{Role: RoleHuman, Content: r.Text("input")},
			{Role: RoleAssistant, Content: r.Text("output")},
		},
	}
}
