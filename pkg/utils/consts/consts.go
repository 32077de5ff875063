// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package consts

const (
	// Content length bounds applied when the validation config leaves them unset.
	DefaultMinLength       = 10
	DefaultMaxLength       = 2048
	DefaultMinInputLength  = 10
	DefaultMinOutputLength = 10

	DefaultValSize = 0.1

	TrainFileName = "train.jsonl"
	ValFileName   = "val.jsonl"

	// ConfigMap keys holding serialized configs.
	ValidationConfigKey = "validation_config.yaml"
	TrainingConfigKey   = "training_config.yaml"

	// ConfigEnvVar points the CLI at a default validation config file.
	ConfigEnvVar                  = "DATASETKIT_CONFIG"
	DefaultReleaseNamespaceEnvVar = "RELEASE_NAMESPACE"

	// Feature flags
	FeatureFlagSkipBlankLines = "SkipBlankLines"

	// Model types with built-in formats.
	ModelTypeMistral  = "mistral"
	ModelTypePi       = "pi"
	ModelTypeGemini   = "gemini"
	ModelTypeDialogue = "dialogue"
)
