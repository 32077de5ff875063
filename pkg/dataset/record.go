// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package dataset

import (
	"encoding/json"
	"fmt"
)

// Record is one training example: a flat JSON object keyed by field name.
// Records decoded from a file remember the exact line they came from so
// that they can be written back out unchanged.
type Record struct {
	Fields map[string]any
	raw    []byte
}

// NewRecord wraps an in-memory field map.
func NewRecord(fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{Fields: fields}
}

func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

func (r Record) Get(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Text returns the field as a string. Absent and null fields are "", other
// non-string scalars are rendered with fmt.
func (r Record) Text(field string) string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// StringField returns the field only when it holds a JSON string.
func (r Record) StringField(field string) (string, bool) {
	s, ok := r.Fields[field].(string)
	return s, ok
}

// Raw returns the source line, or nil for records built in memory.
func (r Record) Raw() []byte {
	return r.raw
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(r.Fields)
}
