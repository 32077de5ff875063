// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	utiljson "k8s.io/apimachinery/pkg/util/json"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

// LoadOptions tunes how newline-delimited JSON is read.
type LoadOptions struct {
	// SkipBlankLines ignores whitespace-only lines instead of failing on them.
	SkipBlankLines bool
}

// LoadJSONL reads every record of a newline-delimited JSON file.
func LoadJSONL(path string, opts LoadOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadJSONL(f, opts)
}

// ReadJSONL decodes one JSON object per line. Any line that is not a UTF-8
// encoded JSON object fails the whole read. Lines have no length limit.
func ReadJSONL(r io.Reader, opts LoadOptions) ([]Record, error) {
	records := []Record{}
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		chunk, readErr := br.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("line %d: %w", lineNo, readErr)
		}
		// A final newline does not start another record.
		if readErr == io.EOF && len(chunk) == 0 {
			break
		}

		line := bytes.TrimSpace(chunk)
		if len(line) > 0 || !opts.SkipBlankLines {
			rec, err := decodeLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			records = append(records, rec)
		}

		if readErr == io.EOF {
			break
		}
	}
	return records, nil
}

func decodeLine(line []byte) (Record, error) {
	if !utf8.Valid(line) {
		return Record{}, errInvalidUTF8
	}
	var v interface{}
	if err := utiljson.Unmarshal(line, &v); err != nil {
		return Record{}, err
	}
	fields, ok := v.(map[string]interface{})
	if !ok {
		return Record{}, fmt.Errorf("expected a JSON object, got %T", v)
	}
	raw := make([]byte, len(line))
	copy(raw, line)
	return Record{Fields: fields, raw: raw}, nil
}

// SaveJSONL writes items one JSON document per line, creating parent
// directories as needed. Records read from disk are written verbatim.
func SaveJSONL[T any](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteJSONL(f, items); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteJSONL is SaveJSONL against an arbitrary writer.
func WriteJSONL[T any](w io.Writer, items []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, item := range items {
		if rec, ok := any(item).(Record); ok && rec.raw != nil {
			if _, err := bw.Write(rec.raw); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return bw.Flush()
}
