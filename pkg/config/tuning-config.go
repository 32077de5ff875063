// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package config

// TrainingConfig is the document consumed by the fine-tuning backend. Each
// section maps onto one configuration object of the backend library.
type TrainingConfig struct {
	ModelConfig        *ModelConfig        `yaml:"ModelConfig,omitempty"`
	TokenizerParams    *TokenizerParams    `yaml:"TokenizerParams,omitempty"`
	QuantizationConfig *QuantizationConfig `yaml:"QuantizationConfig,omitempty"`
	LoraConfig         *LoraConfig         `yaml:"LoraConfig,omitempty"`
	TrainingArguments  *TrainingArguments  `yaml:"TrainingArguments,omitempty"`
	DatasetConfig      *DatasetConfig      `yaml:"DatasetConfig,omitempty"`
}

type DatasetConfig struct {
	ShuffleDataset *bool    `yaml:"shuffle_dataset,omitempty"`
	ShuffleSeed    *int64   `yaml:"shuffle_seed,omitempty"`
	ContextColumn  *string  `yaml:"context_column,omitempty"`
	ResponseColumn *string  `yaml:"response_column,omitempty"`
	TrainTestSplit *float64 `yaml:"train_test_split,omitempty"`
}

type ModelConfig struct {
	PretrainedModelNameOrPath *string `yaml:"pretrained_model_name_or_path,omitempty"`
	TrustRemoteCode           *bool   `yaml:"trust_remote_code,omitempty"`
	TorchDtype                *string `yaml:"torch_dtype,omitempty"`
	DeviceMap                 *string `yaml:"device_map,omitempty"`
}

type TokenizerParams struct {
	PaddingSide *string `yaml:"padding_side,omitempty"`
	UseFast     *bool   `yaml:"use_fast,omitempty"`
}

type QuantizationConfig struct {
	LoadIn8bit            *bool   `yaml:"load_in_8bit,omitempty"`
	LoadIn4bit            *bool   `yaml:"load_in_4bit,omitempty"`
	BNB4bitComputeDtype   *string `yaml:"bnb_4bit_compute_dtype,omitempty"`
	BNB4bitQuantType      *string `yaml:"bnb_4bit_quant_type,omitempty"`
	BNB4bitUseDoubleQuant *bool   `yaml:"bnb_4bit_use_double_quant,omitempty"`
}

// LoraConfig represents the LoRA adapter settings passed to the backend.
type LoraConfig struct {
	R             *int      `yaml:"r,omitempty"`
	LoraAlpha     *int      `yaml:"lora_alpha,omitempty"`
	LoraDropout   *float64  `yaml:"lora_dropout,omitempty"`
	Bias          *string   `yaml:"bias,omitempty"`
	TaskType      *string   `yaml:"task_type,omitempty"`
	TargetModules *[]string `yaml:"target_modules,omitempty"`
}

// TrainingArguments represents the training arguments for a model.
type TrainingArguments struct {
	OutputDir                 string   `yaml:"output_dir"`
	NumTrainEpochs            *float64 `yaml:"num_train_epochs,omitempty"`
	PerDeviceTrainBatchSize   *int     `yaml:"per_device_train_batch_size,omitempty"`
	GradientAccumulationSteps *int     `yaml:"gradient_accumulation_steps,omitempty"`
	LearningRate              *float64 `yaml:"learning_rate,omitempty"`
	MaxGradNorm               *float64 `yaml:"max_grad_norm,omitempty"`
	WarmupRatio               *float64 `yaml:"warmup_ratio,omitempty"`
	LrSchedulerType           *string  `yaml:"lr_scheduler_type,omitempty"`
	SaveStrategy              *string  `yaml:"save_strategy,omitempty"`
	SaveSteps                 *float64 `yaml:"save_steps,omitempty"`
	LoggingSteps              *float64 `yaml:"logging_steps,omitempty"`
	EvaluationStrategy        *string  `yaml:"evaluation_strategy,omitempty"`
	EvalSteps                 *float64 `yaml:"eval_steps,omitempty"`
	LoadBestModelAtEnd        *bool    `yaml:"load_best_model_at_end,omitempty"`
	// TODO: Expose seed and data_seed once trainer configs carry them.
}
