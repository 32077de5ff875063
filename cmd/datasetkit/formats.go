// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package main

import (
	_ "github.com/kaito-project/datasetkit/presets/formats/dialogue"
	_ "github.com/kaito-project/datasetkit/presets/formats/gemini"
	_ "github.com/kaito-project/datasetkit/presets/formats/mistral"
	_ "github.com/kaito-project/datasetkit/presets/formats/pi"
)
