// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var ErrEmptyDataset = errors.New("dataset is empty")

// NewRand returns a seeded generator, or nil when seed is nil so that Split
// falls back to the non-deterministic global source.
func NewRand(seed *int64) *rand.Rand {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(uint64(*seed), 0))
}

// Split partitions records into train and validation subsets.
// The validation subset holds ceil(valSize*n) records drawn by a uniform
// random permutation; train holds the rest in permutation order.
func Split(records []Record, valSize float64, rng *rand.Rand) (train, val []Record, err error) {
	n := len(records)
	if n == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if math.IsNaN(valSize) || valSize <= 0 || valSize >= 1 {
		return nil, nil, fmt.Errorf("val_size=%v should be in the (0, 1) range", valSize)
	}

	nVal := int(math.Ceil(valSize * float64(n)))
	nTrain := n - nVal
	if nTrain == 0 {
		return nil, nil, fmt.Errorf("with n_samples=%d and val_size=%v, the resulting train set will be empty", n, valSize)
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(n)
	} else {
		perm = rand.Perm(n)
	}

	val = make([]Record, 0, nVal)
	for _, idx := range perm[:nVal] {
		val = append(val, records[idx])
	}
	train = make([]Record, 0, nTrain)
	for _, idx := range perm[nVal:] {
		train = append(train, records[idx])
	}
	return train, val, nil
}
