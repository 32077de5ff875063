// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

const DatasetkitPackage = "github.com/kaito-project/datasetkit/cmd/datasetkit"

var (
	// PollInterval defines the interval time for a poll operation.
	PollInterval = 250 * time.Millisecond
	// PollTimeout defines the time after which a CLI run times out.
	PollTimeout = 60 * time.Second
)

func GenerateRandomString(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}

// GenerateRawRecords returns n unique instruction records whose input and
// output pass the default length bounds.
func GenerateRawRecords(n int) []string {
	return lo.Times(n, func(i int) string {
		return fmt.Sprintf(`{"instruction": "Answer the question", "input": "Question %d: %s", "output": "Answer %d: %s"}`,
			i, GenerateRandomString(16), i, GenerateRandomString(16))
	})
}

func WriteLines(dir, name string, lines []string) (string, error) {
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	return path, os.WriteFile(path, []byte(content), 0o644)
}

// ReadLines returns the non-empty lines of a file.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lo.Filter(strings.Split(string(data), "\n"), func(l string, _ int) bool {
		return l != ""
	}), nil
}
