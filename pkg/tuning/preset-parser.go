// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package tuning

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kaito-project/datasetkit/pkg/config"
	"gopkg.in/yaml.v2"
)

type trainingConfigDocument struct {
	TrainingConfig *config.TrainingConfig `yaml:"training_config"`
}

// ParseTrainingConfig parses a training_config.yaml document into a map of
// section name to parameter name to rendered value. Unset sections and
// parameters are omitted.
func ParseTrainingConfig(trainingConfigStr string) (map[string]map[string]string, error) {
	var doc trainingConfigDocument
	if err := yaml.Unmarshal([]byte(trainingConfigStr), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse training config: %w", err)
	}
	if doc.TrainingConfig == nil {
		return nil, fmt.Errorf("missing 'training_config' key")
	}
	return flattenTrainingConfig(doc.TrainingConfig), nil
}

func flattenTrainingConfig(tc *config.TrainingConfig) map[string]map[string]string {
	result := make(map[string]map[string]string)

	trainingConfigVal := reflect.ValueOf(*tc)
	for i := 0; i < trainingConfigVal.NumField(); i++ {
		section := trainingConfigVal.Field(i)
		if section.IsNil() {
			continue
		}

		sectionName := yamlName(trainingConfigVal.Type().Field(i))
		sectionMap := make(map[string]string)
		for j := 0; j < section.Elem().NumField(); j++ {
			param := section.Elem().Field(j)
			if param.Kind() == reflect.Ptr {
				if param.IsNil() {
					continue
				}
				param = param.Elem()
			}
			if param.IsZero() && param.Kind() != reflect.Bool && !isNumber(param.Kind()) {
				continue
			}
			sectionMap[yamlName(section.Elem().Type().Field(j))] = renderValue(param)
		}

		if len(sectionMap) > 0 {
			result[sectionName] = sectionMap
		}
	}
	return result
}

func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// renderValue joins slices with commas; everything else uses its default format.
func renderValue(v reflect.Value) string {
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}

func AddPrefixesToConfigMap(configMap map[string]map[string]string) (map[string]string, error) {
	prefixedConfigMap := make(map[string]string)
	for section, params := range configMap {
		prefix, err := GetCmdPrefixForSection(section)
		if err != nil {
			return nil, err
		}
		for param, value := range params {
			prefixedKey := fmt.Sprintf("%s_%s", prefix, param)
			prefixedConfigMap[prefixedKey] = value
		}
	}
	return prefixedConfigMap, nil
}

func GetCmdPrefixForSection(section string) (string, error) {
	prefixMap := map[string]string{
		"ModelConfig":        "MC",
		"QuantizationConfig": "QC",
		"LoraConfig":         "ELC",
		"TrainingArguments":  "TA",
		"DatasetConfig":      "DC",
		"TokenizerParams":    "TP",
	}

	if prefix, ok := prefixMap[section]; ok {
		return prefix, nil
	}
	return "", fmt.Errorf("prefix for section '%s' not found", section)
}
