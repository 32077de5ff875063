// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package tuning

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/kaito-project/datasetkit/pkg/config"
	"github.com/kaito-project/datasetkit/pkg/k8sresources"
	"github.com/kaito-project/datasetkit/pkg/utils"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"gopkg.in/yaml.v2"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
	"knative.dev/pkg/apis"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

var errNotSetUp = errors.New("trainer is not set up, call Setup first")

// Trainer turns a flat trainer config into the sectioned document read by
// the fine-tuning backend. It never loads a model itself.
type Trainer struct {
	Config         *config.TrainerConfig
	TrainingConfig *config.TrainingConfig
	Log            logr.Logger
}

func NewTrainer(cfg *config.TrainerConfig) *Trainer {
	return &Trainer{
		Config: cfg,
		Log:    klog.Background().WithName("trainer"),
	}
}

// LoadTrainer reads a JSON or YAML trainer config from path.
func LoadTrainer(path string) (*Trainer, error) {
	cfg, err := config.LoadTrainerConfig(path)
	if err != nil {
		return nil, err
	}
	return NewTrainer(cfg), nil
}

// Validate checks the trainer config and accumulates every problem found.
func (t *Trainer) Validate() (errs *apis.FieldError) {
	c := t.Config
	if c.ModelNameOrPath == "" {
		errs = errs.Also(apis.ErrMissingField("model_name_or_path"))
	}
	if c.OutputDir == "" {
		errs = errs.Also(apis.ErrMissingField("output_dir"))
	}

	load4, load8 := c.GetLoadIn4bit(), c.GetLoadIn8bit()
	if load4 && load8 {
		errs = errs.Also(apis.ErrGeneric("Cannot set both 'load_in_4bit' and 'load_in_8bit' to true", "load_in_4bit", "load_in_8bit"))
	}
	switch c.GetMethod() {
	case config.TuningMethodLora:
		if load4 || load8 {
			errs = errs.Also(apis.ErrGeneric("For method 'lora', 'load_in_4bit' or 'load_in_8bit' must not be true", "method"))
		}
	case config.TuningMethodQLora:
		if !load4 && !load8 {
			errs = errs.Also(apis.ErrGeneric("For method 'qlora', either 'load_in_4bit' or 'load_in_8bit' must be true", "method"))
		}
	default:
		errs = errs.Also(apis.ErrInvalidValue(c.GetMethod(), "method", "supported methods are lora and qlora"))
	}

	if r := c.GetLoraR(); r <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(r, "lora_r", "must be positive"))
	}
	if alpha := c.GetLoraAlpha(); alpha <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(alpha, "lora_alpha", "must be positive"))
	}
	if d := c.GetLoraDropout(); d < 0 || d >= 1 {
		errs = errs.Also(apis.ErrOutOfBoundsValue(d, 0, 1, "lora_dropout"))
	}
	if lr := c.GetLearningRate(); lr <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(lr, "learning_rate", "must be positive"))
	}
	if e := c.GetNumTrainEpochs(); e <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(e, "num_train_epochs", "must be positive"))
	}
	if b := c.GetPerDeviceTrainBatchSize(); b <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(b, "per_device_train_batch_size", "must be positive"))
	}
	if g := c.GetGradientAccumulationSteps(); g <= 0 {
		errs = errs.Also(apis.ErrInvalidValue(g, "gradient_accumulation_steps", "must be positive"))
	}
	if w := c.GetWarmupRatio(); w < 0 || w > 1 {
		errs = errs.Also(apis.ErrOutOfBoundsValue(w, 0, 1, "warmup_ratio"))
	}
	if s := c.TrainTestSplit; s != nil && (*s <= 0 || *s >= 1) {
		errs = errs.Also(apis.ErrOutOfBoundsValue(*s, 0, 1, "train_test_split"))
	}
	if s := c.GetLrSchedulerType(); !sets.New(supportedSchedulers...).Has(s) {
		errs = errs.Also(apis.ErrInvalidValue(s, "lr_scheduler_type", fmt.Sprintf("supported schedulers are %v", supportedSchedulers)))
	}
	if d := c.TorchDtype; d != nil && !sets.New(supportedTorchDtypes...).Has(*d) {
		errs = errs.Also(apis.ErrInvalidValue(*d, "torch_dtype", fmt.Sprintf("supported dtypes are %v", supportedTorchDtypes)))
	}
	for k, v := range c.AccelerateParams {
		if k == "" {
			errs = errs.Also(apis.ErrInvalidKeyName(k, "accelerate_params"))
		} else if v == "" {
			errs = errs.Also(apis.ErrInvalidValue(v, fmt.Sprintf("accelerate_params[%s]", k), "must not be empty"))
		}
	}
	return errs
}

// Setup validates the config and builds the backend TrainingConfig.
func (t *Trainer) Setup(ctx context.Context) error {
	if errs := t.Validate(); errs != nil {
		return fmt.Errorf("invalid trainer config: %w", errs)
	}
	c := t.Config

	args, err := t.GetTrainingArguments()
	if err != nil {
		return err
	}

	tc := &config.TrainingConfig{
		ModelConfig: &config.ModelConfig{
			PretrainedModelNameOrPath: ptr.To(c.ModelNameOrPath),
			TrustRemoteCode:           c.TrustRemoteCode,
			TorchDtype:                c.TorchDtype,
			DeviceMap:                 ptr.To("auto"),
		},
		TokenizerParams: &config.TokenizerParams{
			PaddingSide: ptr.To("right"),
			UseFast:     ptr.To(false),
		},
		LoraConfig: &config.LoraConfig{
			R:           ptr.To(c.GetLoraR()),
			LoraAlpha:   ptr.To(c.GetLoraAlpha()),
			LoraDropout: ptr.To(c.GetLoraDropout()),
			Bias:        ptr.To("none"),
			TaskType:    ptr.To("CAUSAL_LM"),
		},
		TrainingArguments: args,
	}
	if len(c.TargetModules) > 0 {
		tc.LoraConfig.TargetModules = ptr.To(c.TargetModules)
	}

	if c.GetMethod() == config.TuningMethodQLora {
		qc := &config.QuantizationConfig{}
		if c.GetLoadIn4bit() {
			qc.LoadIn4bit = ptr.To(true)
			qc.BNB4bitComputeDtype = ptr.To(c.GetBNB4bitComputeDtype())
			qc.BNB4bitQuantType = ptr.To(c.GetBNB4bitQuantType())
			qc.BNB4bitUseDoubleQuant = ptr.To(c.GetBNB4bitUseDoubleQuant())
		} else {
			qc.LoadIn8bit = ptr.To(true)
		}
		tc.QuantizationConfig = qc
	}

	if c.TrainTestSplit != nil || c.ShuffleSeed != nil || c.ContextColumn != nil || c.ResponseColumn != nil {
		tc.DatasetConfig = &config.DatasetConfig{
			ShuffleDataset: ptr.To(true),
			ShuffleSeed:    c.ShuffleSeed,
			ContextColumn:  c.ContextColumn,
			ResponseColumn: c.ResponseColumn,
			TrainTestSplit: c.TrainTestSplit,
		}
	}

	t.TrainingConfig = tc
	t.Log.V(1).Info("Trainer set up", "model", c.ModelNameOrPath, "method", c.GetMethod())
	klog.FromContext(ctx).V(2).Info("TrainingConfig built", "sections", len(flattenTrainingConfig(tc)))
	return nil
}

// GetTrainingArguments returns the TrainingArguments section. Checkpoint and
// evaluation cadence are fixed.
func (t *Trainer) GetTrainingArguments() (*config.TrainingArguments, error) {
	c := t.Config
	if c.OutputDir == "" {
		return nil, apis.ErrMissingField("output_dir")
	}
	return &config.TrainingArguments{
		OutputDir:                 c.OutputDir,
		NumTrainEpochs:            ptr.To(c.GetNumTrainEpochs()),
		PerDeviceTrainBatchSize:   ptr.To(c.GetPerDeviceTrainBatchSize()),
		GradientAccumulationSteps: ptr.To(c.GetGradientAccumulationSteps()),
		LearningRate:              ptr.To(c.GetLearningRate()),
		MaxGradNorm:               ptr.To(c.GetMaxGradNorm()),
		WarmupRatio:               ptr.To(c.GetWarmupRatio()),
		LrSchedulerType:           ptr.To(c.GetLrSchedulerType()),
		SaveStrategy:              ptr.To("steps"),
		SaveSteps:                 ptr.To(50.0),
		LoggingSteps:              ptr.To(10.0),
		EvaluationStrategy:        ptr.To("steps"),
		EvalSteps:                 ptr.To(50.0),
		LoadBestModelAtEnd:        ptr.To(true),
	}, nil
}

// Marshal renders the training_config.yaml document.
func (t *Trainer) Marshal() ([]byte, error) {
	if t.TrainingConfig == nil {
		return nil, errNotSetUp
	}
	return yaml.Marshal(trainingConfigDocument{TrainingConfig: t.TrainingConfig})
}

// Save writes training_config.yaml under outputDir, or under the configured
// output_dir when outputDir is empty.
func (t *Trainer) Save(outputDir string) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = t.Config.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, consts.TrainingConfigKey)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	klog.InfoS("Saved training config", "path", path)
	return nil
}

// EnsureConfigMap publishes training_config.yaml to the named ConfigMap.
func (t *Trainer) EnsureConfigMap(ctx context.Context, kubeClient client.Client, name, namespace string) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	if err := k8sresources.EnsureConfigMapData(ctx, name, namespace, consts.TrainingConfigKey, string(data), kubeClient); err != nil {
		return err
	}
	klog.InfoS("Published training config", "configmap", klog.KRef(namespace, name))
	return nil
}

// BackendCommand builds the launch command:
// accelerate launch <ACCELERATE_PARAMS> fine_tuning.py <PREFIXED_PARAMS>
func (t *Trainer) BackendCommand() ([]string, error) {
	data, err := t.Marshal()
	if err != nil {
		return nil, err
	}
	sections, err := ParseTrainingConfig(string(data))
	if err != nil {
		return nil, err
	}
	modelParams, err := AddPrefixesToConfigMap(sections)
	if err != nil {
		return nil, err
	}
	launchParams := utils.MergeConfigMaps(DefaultAccelerateParams, t.Config.AccelerateParams)
	launchCommand := utils.BuildCmdStr(BaseCommand, launchParams)
	modelCommand := utils.BuildCmdStr(TuningFile, modelParams)
	return utils.ShellCmd(launchCommand + " " + modelCommand), nil
}
