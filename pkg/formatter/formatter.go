// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package formatter

import (
	"fmt"
	"unicode/utf8"

	"github.com/kaito-project/datasetkit/pkg/config"
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/featuregates"
	"github.com/kaito-project/datasetkit/pkg/metrics"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// Formatter remaps generic records into model-specific shapes. It performs
// no validation beyond the optional entry filter.
type Formatter struct {
	Config *config.ValidationConfig
}

func NewFormatter(cfg *config.ValidationConfig) *Formatter {
	return &Formatter{Config: cfg}
}

// LoadDataset reads raw records from a JSONL file.
func (f *Formatter) LoadDataset(path string) ([]dataset.Record, error) {
	records, err := dataset.LoadJSONL(path, dataset.LoadOptions{
		SkipBlankLines: featuregates.Enabled(consts.FeatureFlagSkipBlankLines),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	metrics.RecordsLoaded.Add(float64(len(records)))
	return records, nil
}

// FormatRecords remaps every record with the format registered for modelType.
func (f *Formatter) FormatRecords(records []dataset.Record, modelType string) ([]any, error) {
	format, ok := plugin.KaitoFormatRegister.Get(modelType)
	if !ok {
		return nil, fmt.Errorf("unknown model type %q, supported: %v", modelType, plugin.KaitoFormatRegister.ListFormatNames())
	}
	formatted := lo.Map(records, func(r dataset.Record, _ int) any {
		return format.Remap(r)
	})
	metrics.RecordsFormatted.WithLabelValues(modelType).Add(float64(len(formatted)))
	return formatted, nil
}

// FormatDataset remaps records and writes them to outputPath as JSONL.
func (f *Formatter) FormatDataset(records []dataset.Record, modelType, outputPath string) error {
	formatted, err := f.FormatRecords(records, modelType)
	if err != nil {
		return err
	}
	if err := dataset.SaveJSONL(outputPath, formatted); err != nil {
		return err
	}
	klog.InfoS("FormatDataset", "modelType", modelType, "records", len(formatted), "output", outputPath)
	return nil
}

// ValidateEntry reports whether a raw record has non-empty string input and
// output that meet the configured minimum lengths.
func (f *Formatter) ValidateEntry(r dataset.Record) bool {
	input, ok := r.StringField("input")
	if !ok || input == "" {
		return false
	}
	output, ok := r.StringField("output")
	if !ok || output == "" {
		return false
	}
	return utf8.RuneCountInString(input) >= f.Config.GetMinInputLength() &&
		utf8.RuneCountInString(output) >= f.Config.GetMinOutputLength()
}

// FilterEntries splits records into those passing ValidateEntry and the rest,
// preserving order.
func (f *Formatter) FilterEntries(records []dataset.Record) (kept, dropped []dataset.Record) {
	kept, dropped = lo.FilterReject(records, func(r dataset.Record, _ int) bool {
		return f.ValidateEntry(r)
	})
	metrics.RecordsDropped.Add(float64(len(dropped)))
	return kept, dropped
}
