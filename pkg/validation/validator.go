// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/kaito-project/datasetkit/pkg/config"
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/featuregates"
	"github.com/kaito-project/datasetkit/pkg/metrics"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/utils/plugin"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// ContentFields are the fields whose length is checked on every record,
// whatever the model type.
var ContentFields = []string{"input", "output", "instruction", "prompt", "completion"}

// Validator checks JSONL datasets for schema conformance and content length
// and partitions them into train/validation files.
type Validator struct {
	Config *config.ValidationConfig
	Log    logr.Logger
}

// NewValidator returns a Validator; a nil config means all defaults.
func NewValidator(cfg *config.ValidationConfig) *Validator {
	return &Validator{
		Config: cfg,
		Log:    klog.Background().WithName("validator"),
	}
}

func (v *Validator) load(path string) ([]dataset.Record, error) {
	records, err := dataset.LoadJSONL(path, dataset.LoadOptions{
		SkipBlankLines: featuregates.Enabled(consts.FeatureFlagSkipBlankLines),
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordsLoaded.Add(float64(len(records)))
	return records, nil
}

// ValidateDataset loads the file at path and validates it. An empty modelType
// skips the model-specific schema check. Load failures are reported as a
// single error rather than returned.
func (v *Validator) ValidateDataset(path, modelType string) (bool, []string) {
	records, err := v.load(path)
	if err != nil {
		v.Log.Error(err, "failed to load dataset", "path", path)
		metrics.ValidationErrors.WithLabelValues(metrics.ErrorKindLoad).Inc()
		metrics.ValidationRuns.WithLabelValues("false").Inc()
		return false, []string{fmt.Sprintf("Failed to load dataset: %v", err)}
	}
	valid, errs := v.Validate(records, modelType)
	v.Log.V(1).Info("validated dataset", "path", path, "records", len(records), "valid", valid, "errors", len(errs))
	return valid, errs
}

// Validate runs the schema and content checks over in-memory records.
func (v *Validator) Validate(records []dataset.Record, modelType string) (bool, []string) {
	if len(records) == 0 {
		metrics.ValidationRuns.WithLabelValues("false").Inc()
		return false, []string{"Dataset is empty"}
	}

	errs := []string{}
	if modelType != "" {
		schemaErrs := v.validateModelFormat(records, modelType)
		metrics.ValidationErrors.WithLabelValues(metrics.ErrorKindSchema).Add(float64(len(schemaErrs)))
		errs = append(errs, schemaErrs...)
	}

	contentErrs := v.validateContent(records)
	metrics.ValidationErrors.WithLabelValues(metrics.ErrorKindContent).Add(float64(len(contentErrs)))
	errs = append(errs, contentErrs...)

	valid := len(errs) == 0
	metrics.ValidationRuns.WithLabelValues(strconv.FormatBool(valid)).Inc()
	return valid, errs
}

func (v *Validator) validateModelFormat(records []dataset.Record, modelType string) []string {
	format, ok := plugin.KaitoFormatRegister.Get(modelType)
	if !ok {
		return []string{fmt.Sprintf("Unknown model type: %s", modelType)}
	}

	errs := []string{}
	fields := format.RequiredFields()
	for idx, rec := range records {
		missing := lo.Filter(fields, func(f string, _ int) bool {
			return !rec.Has(f)
		})
		if len(missing) > 0 {
			errs = append(errs, fmt.Sprintf("Entry %d: Missing fields %s", idx, formatFieldList(missing)))
		}
	}
	return errs
}

func (v *Validator) validateContent(records []dataset.Record) []string {
	minLength := v.Config.GetMinLength()
	maxLength := v.Config.GetMaxLength()

	errs := []string{}
	for idx, rec := range records {
		for _, field := range ContentFields {
			value, ok := rec.Get(field)
			if !ok {
				continue
			}
			text, isString := value.(string)
			if !isString {
				errs = append(errs, fmt.Sprintf("Entry %d: %s is not a string", idx, field))
				continue
			}
			length := utf8.RuneCountInString(text)
			if length < minLength {
				errs = append(errs, fmt.Sprintf("Entry %d: %s too short (%d chars)", idx, field, length))
			} else if length > maxLength {
				errs = append(errs, fmt.Sprintf("Entry %d: %s too long (%d chars)", idx, field, length))
			}
		}
	}
	return errs
}

// formatFieldList renders names as a bracketed, single-quoted list, e.g.
// ['input', 'output'].
func formatFieldList(fields []string) string {
	quoted := lo.Map(fields, func(f string, _ int) string {
		return "'" + f + "'"
	})
	return "[" + strings.Join(quoted, ", ") + "]"
}

// CreateTrainValSplit partitions the dataset at path and writes train.jsonl
// and val.jsonl under outputDir. The shuffle is seeded only when the config
// sets shuffle_seed.
func (v *Validator) CreateTrainValSplit(path, outputDir string, valSize float64) error {
	records, err := v.load(path)
	if err != nil {
		return fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	train, val, err := dataset.Split(records, valSize, dataset.NewRand(v.Config.GetShuffleSeed()))
	if err != nil {
		return fmt.Errorf("failed to split dataset %s: %w", path, err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := dataset.SaveJSONL(filepath.Join(outputDir, consts.TrainFileName), train); err != nil {
		return err
	}
	if err := dataset.SaveJSONL(filepath.Join(outputDir, consts.ValFileName), val); err != nil {
		return err
	}

	metrics.SplitRecords.WithLabelValues(metrics.SubsetTrain).Add(float64(len(train)))
	metrics.SplitRecords.WithLabelValues(metrics.SubsetVal).Add(float64(len(val)))
	v.Log.Info("created train/validation split", "source", path, "outputDir", outputDir, "train", len(train), "val", len(val))
	return nil
}
