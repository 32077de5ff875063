// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package plugin

import (
	"sort"
	"sync"

	"github.com/kaito-project/datasetkit/pkg/model"
)

type Registration struct {
	Name     string
	Instance model.Format
}

type FormatRegister struct {
	sync.RWMutex
	formats map[string]*Registration
}

var KaitoFormatRegister FormatRegister

// Register allows format to be added
func (reg *FormatRegister) Register(r *Registration) {
	reg.Lock()
	defer reg.Unlock()
	if r.Name == "" {
		panic("format name is not specified")
	}

	if reg.formats == nil {
		reg.formats = make(map[string]*Registration)
	}

	reg.formats[r.Name] = r
}

func (reg *FormatRegister) MustGet(name string) model.Format {
	f, ok := reg.Get(name)
	if !ok {
		panic("format is not registered")
	}
	return f
}

func (reg *FormatRegister) Get(name string) (model.Format, bool) {
	reg.RLock()
	defer reg.RUnlock()
	r, ok := reg.formats[name]
	if !ok {
		return nil, false
	}
	return r.Instance, true
}

// ListFormatNames returns registered names in sorted order.
func (reg *FormatRegister) ListFormatNames() []string {
	reg.RLock()
	defer reg.RUnlock()
	n := []string{}
	for k := range reg.formats {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (reg *FormatRegister) Has(name string) bool {
	reg.RLock()
	defer reg.RUnlock()
	_, ok := reg.formats[name]
	return ok
}

func IsValidModelType(modelType string) bool {
	return KaitoFormatRegister.Has(modelType)
}
