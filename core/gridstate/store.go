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

// Package gridstate holds the committed state of one grid instance and the
// events fired when parts of it change.
//
// The store is owned by a single logical thread. Writers build the new value
// of a slice of state completely, then commit it with one call, so readers
// never observe a half-updated tree or a partial position table.
package gridstate

import (
	"slices"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/rows"
)

// RowsMeta is the output of a height hydration pass.
type RowsMeta struct {
	// Positions holds the top offset of every visible row, in display order.
	Positions              []float64
	CurrentPageTotalHeight float64
}

// Density scales the uniform row height.
type Density string

const (
	DensityCompact     Density = "compact"
	DensityStandard    Density = "standard"
	DensityComfortable Density = "comfortable"
)

// Factor returns the row height multiplier. Unknown densities are standard.
func (d Density) Factor() float64 {
	switch d {
	case DensityCompact:
		return 0.7
	case DensityComfortable:
		return 1.3
	default:
		return 1
	}
}

// SortDirection orders a sort item.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortItem is one entry of the sort model.
type SortItem struct {
	Field string
	Sort  SortDirection
}

// Pagination selects the visible page. PageSize 0 shows every row.
type Pagination struct {
	Page     int
	PageSize int
}

// State is the committed state of a grid.
type State struct {
	Rows        *rows.TreeState
	VisibleRows []rows.RowEntry
	// RowCount is the number of displayable rows across every page.
	RowCount int

	AggregationModel  *aggregation.Model
	AggregationRules  *aggregation.Rules
	AggregationLookup aggregation.Lookup
	RowGroupingModel  []string

	FilterModel map[string]string
	SortModel   []SortItem
	Pagination  Pagination
	Density     Density

	RowsMeta RowsMeta
}

// Store holds a State and dispatches events to listeners.
type Store struct {
	state     State
	listeners map[EventName][]listener
	nextID    int
}

type listener struct {
	id int
	fn Listener
}

// NewStore creates a store holding an empty tree.
func NewStore() *Store {
	return &Store{
		state: State{
			Rows:             rows.NewTreeState(),
			AggregationModel: aggregation.NewModel(),
			AggregationRules: aggregation.NewRules(),
			Density:          DensityStandard,
		},
		listeners: make(map[EventName][]listener),
	}
}

// State returns the committed state.
func (s *Store) State() State {
	return s.state
}

// SetState commits the state returned by update.
func (s *Store) SetState(update func(State) State) {
	s.state = update(s.state)
}

// SetRowsMeta commits the output of a height hydration pass.
func (s *Store) SetRowsMeta(meta RowsMeta) {
	s.state.RowsMeta = meta
}

// RowsMeta returns the committed height hydration output.
func (s *Store) RowsMeta() RowsMeta {
	return s.state.RowsMeta
}

// Subscribe registers fn for events named name. The returned function removes it.
func (s *Store) Subscribe(name EventName, fn Listener) func() {
	s.nextID++
	id := s.nextID
	s.listeners[name] = append(s.listeners[name], listener{id: id, fn: fn})
	return func() {
		s.listeners[name] = slices.DeleteFunc(s.listeners[name], func(l listener) bool { return l.id == id })
	}
}

// Publish calls the listeners of name in subscription order.
func (s *Store) Publish(name EventName, payload any) {
	event := Event{Name: name, Payload: payload}
	for _, l := range slices.Clone(s.listeners[name]) {
		l.fn(event)
	}
}
