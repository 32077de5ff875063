// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kaito-project/datasetkit/pkg/config"
	"github.com/kaito-project/datasetkit/pkg/dataset"
	"github.com/kaito-project/datasetkit/pkg/formatter"
	"github.com/kaito-project/datasetkit/pkg/k8sclient"
	"github.com/kaito-project/datasetkit/pkg/tuning"
	"github.com/kaito-project/datasetkit/pkg/utils"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/pkg/validation"
	"github.com/samber/lo"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, out io.Writer) error
}

var commands = []command{
	{name: "format", summary: "Convert raw records into a model-specific JSONL file", run: runFormat},
	{name: "validate", summary: "Check a JSONL dataset for schema and content problems", run: runValidate},
	{name: "split", summary: "Write a randomized train/validation split of a dataset", run: runSplit},
	{name: "trainer", summary: "Render the fine-tuning backend config and launch command", run: runTrainer},
}

func newKubeClient() (client.Client, error) {
	return k8sclient.GetOrCreateGlobalClient(scheme)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("no command given, expected one of: " + strings.Join(commandNames(), ", "))
	}
	c, ok := lo.Find(commands, func(c command) bool { return c.name == args[0] })
	if !ok {
		return fmt.Errorf("unknown command %q, expected one of: %s", args[0], strings.Join(commandNames(), ", "))
	}
	return c.run(ctx, args[1:], out)
}

func commandNames() []string {
	return lo.Map(commands, func(c command, _ int) string { return c.name })
}

func requireFlags(fs *flag.FlagSet, names ...string) error {
	var errs []error
	for _, name := range names {
		if fs.Lookup(name).Value.String() == "" {
			errs = append(errs, fmt.Errorf("--%s is required", name))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// configSource selects where a validation config comes from. A ConfigMap
// wins over a file path, and the path falls back to DATASETKIT_CONFIG.
type configSource struct {
	path      string
	configMap string
	namespace string
}

func (s *configSource) bindFile(fs *flag.FlagSet) {
	fs.StringVar(&s.path, "config", "", "Validation config file (JSON or YAML). Defaults to $"+consts.ConfigEnvVar+".")
}

func (s *configSource) bindConfigMap(fs *flag.FlagSet) {
	fs.StringVar(&s.configMap, "config-map", "", "Read the validation config from this ConfigMap's "+consts.ValidationConfigKey+" key.")
	fs.StringVar(&s.namespace, "namespace", "", "Namespace of --config-map. Defaults to $"+consts.DefaultReleaseNamespaceEnvVar+".")
}

func (s *configSource) load(ctx context.Context) (*config.ValidationConfig, error) {
	if s.configMap != "" {
		ns, err := resolveNamespace(s.namespace)
		if err != nil {
			return nil, err
		}
		kubeClient, err := newKubeClient()
		if err != nil {
			return nil, err
		}
		return config.LoadValidationConfigFromConfigMap(ctx, kubeClient, s.configMap, ns)
	}
	path := s.path
	if path == "" {
		path = os.Getenv(consts.ConfigEnvVar)
	}
	if path == "" {
		return nil, nil
	}
	klog.V(2).InfoS("Loading validation config", "path", path)
	return config.LoadValidationConfig(path)
}

func resolveNamespace(ns string) (string, error) {
	if ns != "" {
		return ns, nil
	}
	return utils.GetReleaseNamespace()
}

func runFormat(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	input := fs.String("input", "", "Raw JSONL records.")
	output := fs.String("output", "", "Formatted JSONL output file.")
	modelType := fs.String("model", "", "Target model type.")
	dropInvalid := fs.Bool("drop-invalid", false, "Drop records whose input or output is missing or too short.")
	var src configSource
	src.bindFile(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlags(fs, "input", "output", "model"); err != nil {
		return err
	}

	cfg, err := src.load(ctx)
	if err != nil {
		return err
	}
	f := formatter.NewFormatter(cfg)
	records, err := f.LoadDataset(*input)
	if err != nil {
		return err
	}
	if *dropInvalid {
		var dropped []dataset.Record
		records, dropped = f.FilterEntries(records)
		klog.InfoS("Filtered records", "kept", len(records), "dropped", len(dropped))
	}
	if err := f.FormatDataset(records, *modelType, *output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Formatted %d records for %s into %s\n", len(records), *modelType, *output)
	return nil
}

func runValidate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	input := fs.String("input", "", "JSONL dataset to validate.")
	modelType := fs.String("model", "", "Model type whose required fields are checked.")
	var src configSource
	src.bindFile(fs)
	src.bindConfigMap(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlags(fs, "input"); err != nil {
		return err
	}

	cfg, err := src.load(ctx)
	if err != nil {
		return err
	}
	valid, problems := validation.NewValidator(cfg).ValidateDataset(*input, *modelType)
	if valid {
		fmt.Fprintf(out, "%s is valid\n", *input)
		return nil
	}
	for _, p := range problems {
		fmt.Fprintln(out, p)
	}
	return fmt.Errorf("dataset %s is invalid: %w", *input, utilerrors.NewAggregate(lo.Map(problems, func(p string, _ int) error {
		return errors.New(p)
	})))
}

func runSplit(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	input := fs.String("input", "", "JSONL dataset to split.")
	outputDir := fs.String("output-dir", "", "Directory receiving "+consts.TrainFileName+" and "+consts.ValFileName+".")
	valSize := fs.Float64("val-size", consts.DefaultValSize, "Fraction of records assigned to the validation set.")
	var src configSource
	src.bindFile(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlags(fs, "input", "output-dir"); err != nil {
		return err
	}

	cfg, err := src.load(ctx)
	if err != nil {
		return err
	}
	if err := validation.NewValidator(cfg).CreateTrainValSplit(*input, *outputDir, *valSize); err != nil {
		return err
	}
	fmt.Fprintf(out, "Split %s into %s\n", *input, *outputDir)
	return nil
}

func runTrainer(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	configPath := fs.String("config", "", "Trainer config file (JSON or YAML).")
	outputDir := fs.String("output-dir", "", "Directory receiving "+consts.TrainingConfigKey+". Defaults to the config's output_dir.")
	configMap := fs.String("config-map", "", "Also publish "+consts.TrainingConfigKey+" to this ConfigMap.")
	namespace := fs.String("namespace", "", "Namespace of --config-map. Defaults to $"+consts.DefaultReleaseNamespaceEnvVar+".")
	printCommand := fs.Bool("print-command", false, "Print the backend launch command.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlags(fs, "config"); err != nil {
		return err
	}

	trainer, err := tuning.LoadTrainer(*configPath)
	if err != nil {
		return err
	}
	if err := trainer.Setup(ctx); err != nil {
		return err
	}
	if err := trainer.Save(*outputDir); err != nil {
		return err
	}

	if *configMap != "" {
		ns, err := resolveNamespace(*namespace)
		if err != nil {
			return err
		}
		kubeClient, err := newKubeClient()
		if err != nil {
			return err
		}
		if err := trainer.EnsureConfigMap(ctx, kubeClient, *configMap, ns); err != nil {
			return err
		}
	}

	if *printCommand {
		cmd, err := trainer.BackendCommand()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cmd[len(cmd)-1])
	}
	return nil
}
