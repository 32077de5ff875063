// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

// Package metrics exposes run counters for dataset tooling. A CLI run has no
// scrape endpoint, so the registry is flushed to a node-exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datasetkit"

// Error kinds reported by the validator.
const (
	ErrorKindLoad    = "load"
	ErrorKindSchema  = "schema"
	ErrorKindContent = "content"
)

// Subsets written by a split.
const (
	SubsetTrain = "train"
	SubsetVal   = "val"
)

// Registry holds every datasetkit metric. It is separate from the default
// registry so textfile output carries no Go runtime series.
var Registry = prometheus.NewRegistry()

var (
	RecordsLoaded = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_loaded_total",
		Help:      "Total number of records decoded from JSONL files",
	})
	RecordsFormatted = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_formatted_total",
		Help:      "Total number of records remapped, by model type",
	}, []string{"model_type"})
	RecordsDropped = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Total number of records rejected by the entry filter",
	})
	ValidationRuns = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_runs_total",
		Help:      "Total number of dataset validations, by outcome",
	}, []string{"valid"})
	ValidationErrors = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_errors_total",
		Help:      "Total number of validation errors, by kind",
	}, []string{"kind"})
	SplitRecords = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "split_records_total",
		Help:      "Total number of records written by train/validation splits, by subset",
	}, []string{"subset"})
)

// WriteTextfile atomically writes the registry in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
