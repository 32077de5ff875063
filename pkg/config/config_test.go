// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func TestParseValidationConfig(t *testing.T) {
	testcases := map[string]struct {
		data              string
		expectedMin       int
		expectedMax       int
		expectedMinInput  int
		expectedMinOutput int
		expectedSeed      *int64
		expectedError     string
	}{
		"Empty document uses defaults": {
			data:              "",
			expectedMin:       10,
			expectedMax:       2048,
			expectedMinInput:  10,
			expectedMinOutput: 10,
		},
		"JSON with tabs": {
			data:              "{\n\t\"min_length\": 5,\n\t\"max_length\": 100,\n\t\"shuffle_seed\": 7\n}",
			expectedMin:       5,
			expectedMax:       100,
			expectedMinInput:  10,
			expectedMinOutput: 10,
			expectedSeed:      ptr.To[int64](7),
		},
		"YAML partial": {
			data:              "min_input_length: 3\nmin_output_length: 4\n",
			expectedMin:       10,
			expectedMax:       2048,
			expectedMinInput:  3,
			expectedMinOutput: 4,
		},
		"Unknown keys are ignored": {
			data:              "{\"min_length\": 1, \"language\": \"en\"}",
			expectedMin:       1,
			expectedMax:       2048,
			expectedMinInput:  10,
			expectedMinOutput: 10,
		},
		"Negative bound": {
			data:          "min_length: -1",
			expectedError: "must not be negative",
		},
		"Min above max": {
			data:          "min_length: 50\nmax_length: 20",
			expectedError: "min_length (50) must not exceed max_length (20)",
		},
		"Malformed": {
			data:          "{\"min_length\": ",
			expectedError: "failed to parse validation config",
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			cfg, err := ParseValidationConfig([]byte(tc.data))
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedMin, cfg.GetMinLength())
			assert.Equal(t, tc.expectedMax, cfg.GetMaxLength())
			assert.Equal(t, tc.expectedMinInput, cfg.GetMinInputLength())
			assert.Equal(t, tc.expectedMinOutput, cfg.GetMinOutputLength())
			assert.Equal(t, tc.expectedSeed, cfg.GetShuffleSeed())
		})
	}
}

func TestNilValidationConfigDefaults(t *testing.T) {
	var cfg *ValidationConfig
	assert.Equal(t, consts.DefaultMinLength, cfg.GetMinLength())
	assert.Equal(t, consts.DefaultMaxLength, cfg.GetMaxLength())
	assert.Equal(t, consts.DefaultMinInputLength, cfg.GetMinInputLength())
	assert.Equal(t, consts.DefaultMinOutputLength, cfg.GetMinOutputLength())
	assert.Nil(t, cfg.GetShuffleSeed())
}

func TestLoadValidationConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_length": 512}`), 0o644))

	cfg, err := LoadValidationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.GetMaxLength())

	_, err = LoadValidationConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read validation config")
}

func TestLoadValidationConfigFromConfigMap(t *testing.T) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "dataset-validation", Namespace: "kaito"},
		Data:       map[string]string{consts.ValidationConfigKey: "min_length: 2\nmax_length: 64\n"},
	}
	c := fake.NewClientBuilder().WithScheme(clientgoscheme.Scheme).WithObjects(cm).Build()

	cfg, err := LoadValidationConfigFromConfigMap(context.Background(), c, "dataset-validation", "kaito")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GetMinLength())
	assert.Equal(t, 64, cfg.GetMaxLength())

	_, err = LoadValidationConfigFromConfigMap(context.Background(), c, "missing", "kaito")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTrainerConfigDefaults(t *testing.T) {
	cfg, err := ParseTrainerConfig([]byte(`{"model_name_or_path": "mistralai/Mistral-7B-v0.1", "output_dir": "/mnt/results"}`))
	require.NoError(t, err)

	assert.Equal(t, "mistralai/Mistral-7B-v0.1", cfg.ModelNameOrPath)
	assert.Equal(t, TuningMethodQLora, cfg.GetMethod())
	assert.True(t, cfg.GetLoadIn4bit())
	assert.False(t, cfg.GetLoadIn8bit())
	assert.Equal(t, "float16", cfg.GetBNB4bitComputeDtype())
	assert.Equal(t, "nf4", cfg.GetBNB4bitQuantType())
	assert.True(t, cfg.GetBNB4bitUseDoubleQuant())
	assert.Equal(t, 64, cfg.GetLoraR())
	assert.Equal(t, 16, cfg.GetLoraAlpha())
	assert.Equal(t, 0.1, cfg.GetLoraDropout())
	assert.Equal(t, 3.0, cfg.GetNumTrainEpochs())
	assert.Equal(t, 4, cfg.GetPerDeviceTrainBatchSize())
	assert.Equal(t, 4, cfg.GetGradientAccumulationSteps())
	assert.Equal(t, 2e-4, cfg.GetLearningRate())
	assert.Equal(t, 0.3, cfg.GetMaxGradNorm())
	assert.Equal(t, 0.03, cfg.GetWarmupRatio())
	assert.Equal(t, "constant", cfg.GetLrSchedulerType())
}

func TestTrainerConfigOverrides(t *testing.T) {
	data := `
model_name_or_path: microsoft/phi-2
output_dir: out
method: lora
lora_r: 8
learning_rate: 0.001
num_train_epochs: 1
lr_scheduler_type: cosine
`
	cfg, err := ParseTrainerConfig([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, TuningMethodLora, cfg.GetMethod())
	assert.False(t, cfg.GetLoadIn4bit())
	assert.Equal(t, 8, cfg.GetLoraR())
	assert.Equal(t, 0.001, cfg.GetLearningRate())
	assert.Equal(t, 1.0, cfg.GetNumTrainEpochs())
	assert.Equal(t, "cosine", cfg.GetLrSchedulerType())
}

func TestTrainerConfigEightBitDisablesFourBitDefault(t *testing.T) {
	cfg := &TrainerConfig{LoadIn8bit: ptr.To(true)}
	assert.False(t, cfg.GetLoadIn4bit())
	assert.True(t, cfg.GetLoadIn8bit())
}
