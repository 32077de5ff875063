// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package config

import (
	"context"
	"fmt"
	"os"

	"github.com/kaito-project/datasetkit/pkg/k8sresources"
	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"knative.dev/pkg/apis"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ValidationConfig holds the content bounds used by the validator and the
// entry filter. Unset fields fall back to the package defaults.
type ValidationConfig struct {
	MinLength       *int   `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength       *int   `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	MinInputLength  *int   `json:"min_input_length,omitempty" yaml:"min_input_length,omitempty"`
	MinOutputLength *int   `json:"min_output_length,omitempty" yaml:"min_output_length,omitempty"`
	ShuffleSeed     *int64 `json:"shuffle_seed,omitempty" yaml:"shuffle_seed,omitempty"`
}

func getOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func (c *ValidationConfig) GetMinLength() int {
	if c == nil {
		return consts.DefaultMinLength
	}
	return getOr(c.MinLength, consts.DefaultMinLength)
}

func (c *ValidationConfig) GetMaxLength() int {
	if c == nil {
		return consts.DefaultMaxLength
	}
	return getOr(c.MaxLength, consts.DefaultMaxLength)
}

func (c *ValidationConfig) GetMinInputLength() int {
	if c == nil {
		return consts.DefaultMinInputLength
	}
	return getOr(c.MinInputLength, consts.DefaultMinInputLength)
}

func (c *ValidationConfig) GetMinOutputLength() int {
	if c == nil {
		return consts.DefaultMinOutputLength
	}
	return getOr(c.MinOutputLength, consts.DefaultMinOutputLength)
}

// GetShuffleSeed returns nil when no seed is configured.
func (c *ValidationConfig) GetShuffleSeed() *int64 {
	if c == nil {
		return nil
	}
	return c.ShuffleSeed
}

func (c *ValidationConfig) Validate() (errs *apis.FieldError) {
	check := func(v *int, name string) {
		if v != nil && *v < 0 {
			errs = errs.Also(apis.ErrInvalidValue(*v, name, "must not be negative"))
		}
	}
	check(c.MinLength, "min_length")
	check(c.MaxLength, "max_length")
	check(c.MinInputLength, "min_input_length")
	check(c.MinOutputLength, "min_output_length")

	if c.GetMinLength() > c.GetMaxLength() {
		errs = errs.Also(apis.ErrGeneric(fmt.Sprintf("min_length (%d) must not exceed max_length (%d)", c.GetMinLength(), c.GetMaxLength()), "min_length", "max_length"))
	}
	return errs
}

// ParseValidationConfig decodes a YAML or JSON document.
func ParseValidationConfig(data []byte) (*ValidationConfig, error) {
	cfg := &ValidationConfig{}
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse validation config: %w", err)
	}
	if errs := cfg.Validate(); errs != nil {
		return nil, fmt.Errorf("invalid validation config: %w", errs)
	}
	return cfg, nil
}

func LoadValidationConfig(path string) (*ValidationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read validation config: %w", err)
	}
	return ParseValidationConfig(data)
}

// LoadValidationConfigFromConfigMap reads the validation_config.yaml key of a ConfigMap.
func LoadValidationConfigFromConfigMap(ctx context.Context, kubeClient client.Client, name, namespace string) (*ValidationConfig, error) {
	data, err := k8sresources.GetConfigMapData(ctx, name, namespace, consts.ValidationConfigKey, kubeClient)
	if err != nil {
		return nil, err
	}
	return ParseValidationConfig([]byte(data))
}
