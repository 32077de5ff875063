// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func TestReadJSONL(t *testing.T) {
	testcases := map[string]struct {
		input         string
		opts          LoadOptions
		expectedCount int
		expectedError string
	}{
		"Two records": {
			input:         "{\"input\": \"a\"}\n{\"output\": \"b\"}\n",
			expectedCount: 2,
		},
		"No trailing newline": {
			input:         "{\"input\": \"a\"}",
			expectedCount: 1,
		},
		"Empty input": {
			input:         "",
			expectedCount: 0,
		},
		"Blank line fails by default": {
			input:         "{\"input\": \"a\"}\n\n{\"input\": \"b\"}\n",
			expectedError: "line 2:",
		},
		"Blank line skipped when enabled": {
			input:         "{\"input\": \"a\"}\n   \n{\"input\": \"b\"}\n",
			opts:          LoadOptions{SkipBlankLines: true},
			expectedCount: 2,
		},
		"Malformed JSON": {
			input:         "{\"input\": \"a\"}\n{not json}\n",
			expectedError: "line 2:",
		},
		"Array is not a record": {
			input:         "[1, 2]\n",
			expectedError: "line 1: expected a JSON object",
		},
		"Invalid UTF-8": {
			input:         "{\"input\": \"a\"}\n{\"input\": \"abc\xff\xfedef\"}\n",
			expectedError: "line 2: invalid UTF-8",
		},
		"CRLF line endings": {
			input:         "{\"input\": \"a\"}\r\n{\"input\": \"b\"}\r\n",
			expectedCount: 2,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			records, err := ReadJSONL(strings.NewReader(tc.input), tc.opts)
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tc.expectedCount)
		})
	}
}

func TestReadJSONLLongLine(t *testing.T) {
	long := strings.Repeat("x", 11*1024*1024)
	src := "{\"input\": \"a\"}\n{\"input\": \"" + long + "\"}\n"

	records, err := ReadJSONL(strings.NewReader(src), LoadOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, long, records[1].Text("input"))
}

func TestLoadJSONLMissingFile(t *testing.T) {
	_, err := LoadJSONL(filepath.Join(t.TempDir(), "missing.jsonl"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRecordAccessors(t *testing.T) {
	records, err := ReadJSONL(strings.NewReader(`{"input": "hello", "count": 3, "none": null}`), LoadOptions{})
	require.NoError(t, err)
	rec := records[0]

	assert.True(t, rec.Has("input"))
	assert.False(t, rec.Has("output"))
	assert.Equal(t, "hello", rec.Text("input"))
	assert.Equal(t, "", rec.Text("output"))
	assert.Equal(t, "", rec.Text("none"))
	assert.Equal(t, "3", rec.Text("count"))

	s, ok := rec.StringField("input")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
	_, ok = rec.StringField("count")
	assert.False(t, ok)
	_, ok = rec.StringField("output")
	assert.False(t, ok)
	assert.Equal(t, []byte(`{"input": "hello", "count": 3, "none": null}`), rec.Raw())
}

func TestWriteJSONL(t *testing.T) {
	t.Run("Records from disk are written verbatim", func(t *testing.T) {
		src := "{\"b\": 1,  \"a\": \"<x>\"}\n{\"c\": true}\n"
		records, err := ReadJSONL(strings.NewReader(src), LoadOptions{})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteJSONL(&buf, records))
		assert.Equal(t, src, buf.String())
	})

	t.Run("Structs keep field order and do not escape HTML", func(t *testing.T) {
		type item struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		}
		var buf bytes.Buffer
		require.NoError(t, WriteJSONL(&buf, []item{{Prompt: "a<b", Completion: "c&d"}}))
		assert.Equal(t, "{\"prompt\":\"a<b\",\"completion\":\"c&d\"}\n", buf.String())
	})

	t.Run("In-memory records", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSONL(&buf, []Record{NewRecord(map[string]any{"input": "x"})}))
		assert.Equal(t, "{\"input\":\"x\"}\n", buf.String())
	})
}

func TestSaveJSONLCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.jsonl")
	require.NoError(t, SaveJSONL(path, []map[string]string{{"input": "x"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"input\":\"x\"}\n", string(data))
}

func makeRecords(t *testing.T, n int) []Record {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "{\"id\": %d}\n", i)
	}
	records, err := ReadJSONL(strings.NewReader(sb.String()), LoadOptions{})
	require.NoError(t, err)
	return records
}

func rawLines(records []Record) []string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, string(r.Raw()))
	}
	return lines
}

func TestSplit(t *testing.T) {
	testcases := map[string]struct {
		n             int
		valSize       float64
		expectedTrain int
		expectedVal   int
		expectedError string
	}{
		"Hundred records ten percent": {
			n:             100,
			valSize:       0.1,
			expectedTrain: 90,
			expectedVal:   10,
		},
		"Validation size rounds up": {
			n:             15,
			valSize:       0.1,
			expectedTrain: 13,
			expectedVal:   2,
		},
		"Two records half": {
			n:             2,
			valSize:       0.5,
			expectedTrain: 1,
			expectedVal:   1,
		},
		"Empty dataset": {
			n:             0,
			valSize:       0.1,
			expectedError: "dataset is empty",
		},
		"Single record leaves train empty": {
			n:             1,
			valSize:       0.1,
			expectedError: "train set will be empty",
		},
		"Zero val size": {
			n:             10,
			valSize:       0,
			expectedError: "should be in the (0, 1) range",
		},
		"Val size of one": {
			n:             10,
			valSize:       1,
			expectedError: "should be in the (0, 1) range",
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			records := makeRecords(t, tc.n)
			train, val, err := Split(records, tc.valSize, nil)
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, train, tc.expectedTrain)
			assert.Len(t, val, tc.expectedVal)

			union := append(rawLines(train), rawLines(val)...)
			sort.Strings(union)
			original := rawLines(records)
			sort.Strings(original)
			assert.Equal(t, original, union)
		})
	}
}

func TestSplitSeeded(t *testing.T) {
	records := makeRecords(t, 50)

	train1, val1, err := Split(records, 0.2, NewRand(ptr.To[int64](42)))
	require.NoError(t, err)
	train2, val2, err := Split(records, 0.2, NewRand(ptr.To[int64](42)))
	require.NoError(t, err)

	assert.Equal(t, rawLines(train1), rawLines(train2))
	assert.Equal(t, rawLines(val1), rawLines(val2))
	assert.Nil(t, NewRand(nil))
}
