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

// Package grid assembles the row tree, aggregation and row height engines of
// one grid instance and keeps them consistent as models change.
//
// Every command runs the affected passes to completion and commits their
// output before returning. Only measurement-driven height passes are deferred,
// through the instance's scheduler.
package grid

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/pipes"
	"github.com/google/gridcore/core/rows"
	"github.com/google/gridcore/core/rowsmeta"
	"github.com/google/gridcore/core/scheduler"
)

// ApplierID is the id the grid registers under on the hydrateRows pipeline.
const ApplierID = "grid"

// Options configures a Grid.
type Options struct {
	Columns []*columns.ColumnDef
	Rows    []rows.RowEntry
	// PinnedRows are user rows held at the top or bottom edge.
	PinnedRows rows.PinnedRows

	// AggregationFunctions defaults to aggregation.Builtins().
	AggregationFunctions   *aggregation.Registry
	AggregationModel       *aggregation.Model
	GetAggregationPosition aggregation.PositionResolver
	RowGroupingModel       []string

	FilterModel map[string]string
	SortModel   []gridstate.SortItem
	Pagination  gridstate.Pagination

	RowHeight             int
	Density               gridstate.Density
	GetRowHeight          func(rowsmeta.RowHeightParams) rowsmeta.RowHeight
	GetEstimatedRowHeight func(rowsmeta.RowHeightParams) (float64, bool)
	GetRowSpacing         func(rowsmeta.RowSpacingParams) rowsmeta.RowSpacing

	// Scheduler runs debounced height passes. nil runs them synchronously.
	Scheduler    scheduler.Scheduler
	DebounceWait time.Duration

	// Texts defaults to English.
	Texts  *locale.Texts
	Logger *slog.Logger
}

// Grid is one grid instance. It is not safe for concurrent use; drive it from
// the goroutine running its scheduler.
type Grid struct {
	columnDefs []*columns.ColumnDef
	lookup     columns.Lookup
	entries    []rows.RowEntry
	pinned     rows.PinnedRows
	functions  *aggregation.Registry
	position   aggregation.PositionResolver
	expansion  map[rows.RowID]bool

	pipes   *pipes.Registry
	store   *gridstate.Store
	heights *rowsmeta.Engine
	texts   *locale.Texts
	logger  *slog.Logger
}

// New creates a grid and runs the first hydration.
func New(opts Options) *Grid {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	functions := opts.AggregationFunctions
	if functions == nil {
		functions = aggregation.Builtins()
	}
	position := opts.GetAggregationPosition
	if position == nil {
		position = aggregation.DefaultPosition
	}
	texts := opts.Texts
	if texts == nil {
		texts = locale.ForLanguage("en")
	}
	model := opts.AggregationModel
	if model == nil {
		model = aggregation.NewModel()
	}
	density := opts.Density
	if density == "" {
		density = gridstate.DensityStandard
	}

	g := &Grid{
		columnDefs: slices.Clone(opts.Columns),
		lookup:     columns.NewLookup(opts.Columns),
		entries:    slices.Clone(opts.Rows),
		pinned:     opts.PinnedRows,
		functions:  functions,
		position:   position,
		expansion:  make(map[rows.RowID]bool),
		pipes:      pipes.NewRegistry(),
		store:      gridstate.NewStore(),
		texts:      texts,
		logger:     logger.With("component", "grid"),
	}

	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.AggregationModel = model.Clone()
		s.RowGroupingModel = slices.Clone(opts.RowGroupingModel)
		s.FilterModel = maps.Clone(opts.FilterModel)
		s.SortModel = slices.Clone(opts.SortModel)
		s.Pagination = opts.Pagination
		s.Density = density
		s.AggregationRules = aggregation.GetAggregationRules(g.lookup, s.AggregationModel, functions)
		return s
	})

	g.heights = rowsmeta.New(rowsmeta.Options{
		RowHeight:             opts.RowHeight,
		Density:               density,
		GetRowHeight:          opts.GetRowHeight,
		GetEstimatedRowHeight: opts.GetEstimatedRowHeight,
		GetRowSpacing:         opts.GetRowSpacing,
		VisibleRows:           func() []rows.RowEntry { return g.store.State().VisibleRows },
		PinnedRows:            func() rows.PinnedRows { return g.store.State().Rows.PinnedRows },
		HasRow:                g.hasRow,
		Pipes:                 g.pipes,
		Store:                 g.store,
		Scheduler:             opts.Scheduler,
		DebounceWait:          opts.DebounceWait,
		Logger:                logger,
	})

	aggregation.RegisterFooterProcessor(g.pipes, func() *aggregation.Rules {
		return g.store.State().AggregationRules
	}, position)
	g.pipes.RegisterApplier(pipes.HydrateRows, ApplierID, g.hydrateRows)

	g.hydrateRows()
	return g
}

// hasRow reports whether id is a node of the committed tree.
func (g *Grid) hasRow(id rows.RowID) bool {
	tree := g.store.State().Rows
	if tree == nil {
		return false
	}
	_, ok := tree.Tree[id]
	return ok
}

// Pipes returns the pipeline registry. Processors registered on it re-run the
// affected passes.
func (g *Grid) Pipes() *pipes.Registry {
	return g.pipes
}

// Heights returns the row height engine.
func (g *Grid) Heights() *rowsmeta.Engine {
	return g.heights
}

// Close stops deferred work.
func (g *Grid) Close() {
	g.heights.Close()
}

// Subscribe registers fn for events named name.
func (g *Grid) Subscribe(name gridstate.EventName, fn gridstate.Listener) func() {
	return g.store.Subscribe(name, fn)
}

// State returns the committed state.
func (g *Grid) State() gridstate.State {
	return g.store.State()
}

// Tree returns the committed row tree.
func (g *Grid) Tree() rows.Tree {
	return g.store.State().Rows.Tree
}

// TreeState returns the committed row tree with its depth index and pinned rows.
func (g *Grid) TreeState() *rows.TreeState {
	return g.store.State().Rows
}

// VisibleRows returns the current page in display order.
func (g *Grid) VisibleRows() []rows.RowEntry {
	return slices.Clone(g.store.State().VisibleRows)
}

// RowCount returns the number of displayable rows across every page.
func (g *Grid) RowCount() int {
	return g.store.State().RowCount
}

// PinnedRows returns the pinned rows, including the grid-wide footer.
func (g *Grid) PinnedRows() rows.PinnedRows {
	return g.store.State().Rows.PinnedRows
}

// Columns returns the column definitions in display order.
func (g *Grid) Columns() []*columns.ColumnDef {
	return slices.Clone(g.columnDefs)
}

// ColumnLookup returns the column definitions by field.
func (g *Grid) ColumnLookup() columns.Lookup {
	return g.lookup
}

// AggregationModel returns a copy of the aggregation model.
func (g *Grid) AggregationModel() *aggregation.Model {
	return g.store.State().AggregationModel.Clone()
}

// AggregationRules returns the rules derived from the model.
func (g *Grid) AggregationRules() *aggregation.Rules {
	return g.store.State().AggregationRules
}

// AggregationLookup returns the aggregated values of the filtered rows.
func (g *Grid) AggregationLookup() aggregation.Lookup {
	return g.store.State().AggregationLookup
}

// AggregationFunctions returns the function registry.
func (g *Grid) AggregationFunctions() *aggregation.Registry {
	return g.functions
}

// AvailableAggregationFunctions returns the functions usable on field.
func (g *Grid) AvailableAggregationFunctions(field string) []string {
	return aggregation.GetAvailableAggregationFunctions(g.functions, g.lookup[field])
}

// AggregationLabel returns the label of the rule applied to field, or "" when
// the field is not aggregated.
func (g *Grid) AggregationLabel(field string) string {
	rule, ok := g.AggregationRules().Get(field)
	if !ok {
		return ""
	}
	return aggregation.GetAggregationFunctionLabel(rule, g.texts)
}

// Texts returns the locale texts of the grid.
func (g *Grid) Texts() *locale.Texts {
	return g.texts
}

// RowGroupingModel returns the grouping fields, outermost first.
func (g *Grid) RowGroupingModel() []string {
	return slices.Clone(g.store.State().RowGroupingModel)
}

// RowsMeta returns the committed positions.
func (g *Grid) RowsMeta() gridstate.RowsMeta {
	return g.store.RowsMeta()
}

// RowHeight returns the effective height of a row.
func (g *Grid) RowHeight(id rows.RowID) float64 {
	return g.heights.RowHeight(id)
}

// ExportState returns the restorable models.
func (g *Grid) ExportState() gridstate.Snapshot {
	return g.store.State().Snapshot()
}
