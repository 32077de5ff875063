// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package config

import (
	"fmt"
	"os"
)

type TuningMethod string

const (
	TuningMethodLora  TuningMethod = "lora"
	TuningMethodQLora TuningMethod = "qlora"
)

// TrainerConfig is the flat, user-facing trainer configuration. Unset
// fields take the defaults returned by the Get* accessors.
type TrainerConfig struct {
	ModelNameOrPath           string        `json:"model_name_or_path" yaml:"model_name_or_path"`
	OutputDir                 string        `json:"output_dir" yaml:"output_dir"`
	TrustRemoteCode           *bool         `json:"trust_remote_code,omitempty" yaml:"trust_remote_code,omitempty"`
	TorchDtype                *string       `json:"torch_dtype,omitempty" yaml:"torch_dtype,omitempty"`
	Method                    *TuningMethod `json:"method,omitempty" yaml:"method,omitempty"`
	LoadIn4bit                *bool         `json:"load_in_4bit,omitempty" yaml:"load_in_4bit,omitempty"`
	LoadIn8bit                *bool         `json:"load_in_8bit,omitempty" yaml:"load_in_8bit,omitempty"`
	BNB4bitComputeDtype       *string       `json:"bnb_4bit_compute_dtype,omitempty" yaml:"bnb_4bit_compute_dtype,omitempty"`
	BNB4bitQuantType          *string       `json:"bnb_4bit_quant_type,omitempty" yaml:"bnb_4bit_quant_type,omitempty"`
	BNB4bitUseDoubleQuant     *bool         `json:"bnb_4bit_use_double_quant,omitempty" yaml:"bnb_4bit_use_double_quant,omitempty"`
	LoraR                     *int          `json:"lora_r,omitempty" yaml:"lora_r,omitempty"`
	LoraAlpha                 *int          `json:"lora_alpha,omitempty" yaml:"lora_alpha,omitempty"`
	LoraDropout               *float64      `json:"lora_dropout,omitempty" yaml:"lora_dropout,omitempty"`
	TargetModules             []string      `json:"target_modules,omitempty" yaml:"target_modules,omitempty"`
	NumTrainEpochs            *float64      `json:"num_train_epochs,omitempty" yaml:"num_train_epochs,omitempty"`
	PerDeviceTrainBatchSize   *int          `json:"per_device_train_batch_size,omitempty" yaml:"per_device_train_batch_size,omitempty"`
	GradientAccumulationSteps *int          `json:"gradient_accumulation_steps,omitempty" yaml:"gradient_accumulation_steps,omitempty"`
	LearningRate              *float64      `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty"`
	MaxGradNorm               *float64      `json:"max_grad_norm,omitempty" yaml:"max_grad_norm,omitempty"`
	WarmupRatio               *float64      `json:"warmup_ratio,omitempty" yaml:"warmup_ratio,omitempty"`
	LrSchedulerType           *string       `json:"lr_scheduler_type,omitempty" yaml:"lr_scheduler_type,omitempty"`
	TrainTestSplit            *float64      `json:"train_test_split,omitempty" yaml:"train_test_split,omitempty"`
	ShuffleSeed               *int64        `json:"shuffle_seed,omitempty" yaml:"shuffle_seed,omitempty"`
	ContextColumn             *string       `json:"context_column,omitempty" yaml:"context_column,omitempty"`
	ResponseColumn            *string       `json:"response_column,omitempty" yaml:"response_column,omitempty"`
	// AccelerateParams override the launcher defaults key by key.
	AccelerateParams map[string]string `json:"accelerate_params,omitempty" yaml:"accelerate_params,omitempty"`
}

func (c *TrainerConfig) GetMethod() TuningMethod {
	if c.Method == nil {
		return TuningMethodQLora
	}
	return *c.Method
}

// GetLoadIn4bit defaults to true for qlora unless 8-bit loading was requested.
func (c *TrainerConfig) GetLoadIn4bit() bool {
	if c.LoadIn4bit != nil {
		return *c.LoadIn4bit
	}
	return c.GetMethod() == TuningMethodQLora && !c.GetLoadIn8bit()
}

func (c *TrainerConfig) GetLoadIn8bit() bool {
	return c.LoadIn8bit != nil && *c.LoadIn8bit
}

func (c *TrainerConfig) GetBNB4bitComputeDtype() string {
	return stringOr(c.BNB4bitComputeDtype, "float16")
}

func (c *TrainerConfig) GetBNB4bitQuantType() string {
	return stringOr(c.BNB4bitQuantType, "nf4")
}

func (c *TrainerConfig) GetBNB4bitUseDoubleQuant() bool {
	return c.BNB4bitUseDoubleQuant == nil || *c.BNB4bitUseDoubleQuant
}

func (c *TrainerConfig) GetLoraR() int              { return getOr(c.LoraR, 64) }
func (c *TrainerConfig) GetLoraAlpha() int          { return getOr(c.LoraAlpha, 16) }
func (c *TrainerConfig) GetLoraDropout() float64    { return floatOr(c.LoraDropout, 0.1) }
func (c *TrainerConfig) GetNumTrainEpochs() float64 { return floatOr(c.NumTrainEpochs, 3) }
func (c *TrainerConfig) GetPerDeviceTrainBatchSize() int {
	return getOr(c.PerDeviceTrainBatchSize, 4)
}
func (c *TrainerConfig) GetGradientAccumulationSteps() int {
	return getOr(c.GradientAccumulationSteps, 4)
}
func (c *TrainerConfig) GetLearningRate() float64 { return floatOr(c.LearningRate, 2e-4) }
func (c *TrainerConfig) GetMaxGradNorm() float64  { return floatOr(c.MaxGradNorm, 0.3) }
func (c *TrainerConfig) GetWarmupRatio() float64  { return floatOr(c.WarmupRatio, 0.03) }
func (c *TrainerConfig) GetLrSchedulerType() string {
	return stringOr(c.LrSchedulerType, "constant")
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func ParseTrainerConfig(data []byte) (*TrainerConfig, error) {
	cfg := &TrainerConfig{}
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse trainer config: %w", err)
	}
	return cfg, nil
}

// LoadTrainerConfig reads a JSON or YAML trainer config file.
func LoadTrainerConfig(path string) (*TrainerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trainer config: %w", err)
	}
	return ParseTrainerConfig(data)
}
