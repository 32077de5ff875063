// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package tuning

const (
	DefaultNumProcesses = "1"
	DefaultNumMachines  = "1"
	DefaultMachineRank  = "0"
	DefaultGPUIds       = "all"

	// BaseCommand launches the fine-tuning backend.
	BaseCommand = "accelerate launch"
	TuningFile  = "fine_tuning.py"
)

var (
	DefaultAccelerateParams = map[string]string{
		"num_processes": DefaultNumProcesses,
		"num_machines":  DefaultNumMachines,
		"machine_rank":  DefaultMachineRank,
		"gpu_ids":       DefaultGPUIds,
	}

	// Schedulers accepted by the backend's lr_scheduler_type.
	supportedSchedulers = []string{
		"linear",
		"cosine",
		"cosine_with_restarts",
		"polynomial",
		"constant",
		"constant_with_warmup",
		"inverse_sqrt",
		"reduce_lr_on_plateau",
	}

	supportedTorchDtypes = []string{"auto", "float16", "bfloat16", "float32"}
)
