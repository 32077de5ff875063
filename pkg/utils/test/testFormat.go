// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package test

import (
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
)

const TestFormatName = "test-format"

type testFormat struct{}

type testRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (*testFormat) RequiredFields() []string {
	return []string{"question", "answer"}
}

func (*testFormat) Remap(r dataset.Record) any {
	return testRecord{
		Question: r.Text("input"),
		Answer:   r.Text("output"),
	}
}

func RegisterTestFormat() {
	var test testFormat
	plugin.KaitoFormatRegister.Register(&plugin.Registration{
		Name:     TestFormatName,
		Instance: &test,
	})
}
