// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package featuregates

import (
	"testing"

	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"gotest.tools/assert"
)

func TestParseFeatureGates(t *testing.T) {
	tests := []struct {
		name          string
		featureGates  string
		expectedError bool
		expectedValue bool
	}{
		{
			name:          "WithValidEnableFeatureGates",
			featureGates:  "SkipBlankLines=true",
			expectedError: false,
			expectedValue: true,
		},
		{
			name:          "WithInvalidFeatureGates",
			featureGates:  "invalid",
			expectedError: true,
		},
		{
			name:          "WithValidDisableFeatureGates",
			featureGates:  "SkipBlankLines=false",
			expectedError: false,
			expectedValue: false,
		},
		{
			name:          "WithEmptyFeatureGates",
			featureGates:  "",
			expectedError: false,
		},
		{
			name:          "WithUnknownFeatureGate",
			featureGates:  "SkipBlankLines=true,feature2=false",
			expectedError: true,
			expectedValue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			FeatureGates[consts.FeatureFlagSkipBlankLines] = false
			defer func() { FeatureGates[consts.FeatureFlagSkipBlankLines] = false }()

			err := ParseAndValidateFeatureGates(tt.featureGates)
			if tt.expectedError {
				assert.Check(t, err != nil, "expected error but got nil")
			} else {
				assert.NilError(t, err)
			}
			if tt.featureGates != "" && tt.featureGates != "invalid" {
				assert.Equal(t, tt.expectedValue, Enabled(consts.FeatureFlagSkipBlankLines))
			}
		})
	}
}

func TestEnabledUnknownGate(t *testing.T) {
	assert.Equal(t, false, Enabled("NoSuchGate"))
}
