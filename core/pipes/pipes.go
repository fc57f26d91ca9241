/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package pipes is an instance-scoped registry of named transformation
// pipelines. Producers call Apply with an initial value; every processor
// registered under the name runs in registration order, each receiving the
// previous output. Features add processors without the producer knowing
// about them.
package pipes

import "slices"

// Name identifies a pipeline.
type Name string

const (
	// HydrateRows transforms a *rows.TreeState after the row tree is built.
	HydrateRows Name = "hydrateRows"
	// RowHeight transforms the slot map of one row (map[string]float64) with the
	// rows.RowEntry as context.
	RowHeight Name = "rowHeight"
)

// Processor transforms a value. ctx carries pipeline-specific context.
type Processor func(value any, ctx any) any

// Registration is the handle returned by Register. It is the identity used to
// remove a processor.
type Registration struct {
	name Name
	id   string
	fn   Processor
}

// Name returns the pipeline the processor is registered on.
func (r *Registration) Name() Name { return r.name }

// ID returns the id the processor was registered with.
func (r *Registration) ID() string { return r.id }

type applier struct {
	id string
	fn func()
}

// Registry holds the processors and appliers of one grid instance.
// It is not safe for concurrent use.
type Registry struct {
	processors map[Name][]*Registration
	appliers   map[Name][]applier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[Name][]*Registration),
		appliers:   make(map[Name][]applier),
	}
}

// Register adds fn to the pipeline name under id. Registering an id that is
// already present replaces its function without moving it.
func (r *Registry) Register(name Name, id string, fn Processor) *Registration {
	list := r.processors[name]
	if i := slices.IndexFunc(list, func(reg *Registration) bool { return reg.id == id }); i >= 0 {
		list[i].fn = fn
		r.runAppliers(name)
		return list[i]
	}
	reg := &Registration{name: name, id: id, fn: fn}
	r.processors[name] = append(list, reg)
	r.runAppliers(name)
	return reg
}

// Unregister removes the processor identified by reg. Unknown or already
// removed registrations are ignored.
func (r *Registry) Unregister(reg *Registration) {
	if reg == nil {
		return
	}
	list := r.processors[reg.name]
	i := slices.Index(list, reg)
	if i < 0 {
		return
	}
	r.processors[reg.name] = slices.Delete(list, i, i+1)
	r.runAppliers(reg.name)
}

// Apply folds value through every processor of name, in registration order.
func (r *Registry) Apply(name Name, value any, ctx any) any {
	for _, reg := range r.processors[name] {
		value = reg.fn(value, ctx)
	}
	return value
}

// Len returns the number of processors registered on name.
func (r *Registry) Len(name Name) int {
	return len(r.processors[name])
}

// RegisterApplier registers fn to run whenever the processors of name change.
// It returns a function that removes the applier.
func (r *Registry) RegisterApplier(name Name, id string, fn func()) func() {
	list := r.appliers[name]
	if i := slices.IndexFunc(list, func(a applier) bool { return a.id == id }); i >= 0 {
		list[i].fn = fn
	} else {
		r.appliers[name] = append(list, applier{id: id, fn: fn})
	}
	return func() {
		r.appliers[name] = slices.DeleteFunc(r.appliers[name], func(a applier) bool { return a.id == id })
	}
}

func (r *Registry) runAppliers(name Name) {
	for _, a := range slices.Clone(r.appliers[name]) {
		a.fn()
	}
}

// RegisterFunc is the typed form of Register. Values of another type pass
// through the processor unchanged.
func RegisterFunc[V any, C any](r *Registry, name Name, id string, fn func(value V, ctx C) V) *Registration {
	return r.Register(name, id, func(value any, ctx any) any {
		v, ok := value.(V)
		if !ok {
			return value
		}
		c, _ := ctx.(C)
		return fn(v, c)
	})
}

// ApplyFunc is the typed form of Apply. If a processor returns a value of
// another type, the initial value is returned.
func ApplyFunc[V any, C any](r *Registry, name Name, value V, ctx C) V {
	out, ok := r.Apply(name, value, ctx).(V)
	if !ok {
		return value
	}
	return out
}
