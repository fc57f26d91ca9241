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

package grid

import (
	"maps"
	"slices"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/rows"
)

// SetRows replaces the data rows.
func (g *Grid) SetRows(entries []rows.RowEntry) {
	g.entries = slices.Clone(entries)
	g.hydrateRows()
}

// SetPinnedRows replaces the user-pinned rows.
func (g *Grid) SetPinnedRows(pinned rows.PinnedRows) {
	g.pinned = rows.PinnedRows{Top: slices.Clone(pinned.Top), Bottom: slices.Clone(pinned.Bottom)}
	g.hydrateRows()
}

// SetColumns replaces the column definitions. Aggregation rules and grouping
// are re-derived against the new columns.
func (g *Grid) SetColumns(defs []*columns.ColumnDef) {
	g.columnDefs = slices.Clone(defs)
	g.lookup = columns.NewLookup(defs)
	g.updateAggregationRules()
	g.hydrateRows()
}

// SetAggregationModel replaces the aggregation model and fires
// aggregationModelChange.
func (g *Grid) SetAggregationModel(model *aggregation.Model) {
	if model == nil {
		model = aggregation.NewModel()
	}
	if modelsEqual(g.store.State().AggregationModel, model) {
		return
	}
	next := model.Clone()
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.AggregationModel = next
		return s
	})
	if g.updateAggregationRules() {
		g.hydrateRows()
	}
	g.store.Publish(gridstate.AggregationModelChange, next.Clone())
}

// SetAggregationFunctions replaces the function registry.
func (g *Grid) SetAggregationFunctions(functions *aggregation.Registry) {
	if functions == nil {
		functions = aggregation.Builtins()
	}
	g.functions = functions
	if g.updateAggregationRules() {
		g.hydrateRows()
	}
}

// updateAggregationRules re-derives the rules and commits them when they
// changed. It reports whether they did.
func (g *Grid) updateAggregationRules() bool {
	state := g.store.State()
	rules := aggregation.GetAggregationRules(g.lookup, state.AggregationModel, g.functions)
	if aggregation.AreAggregationRulesEqual(state.AggregationRules, rules) {
		return false
	}
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.AggregationRules = rules
		return s
	})
	g.logger.Debug("aggregation rules changed", "fields", rules.Keys())
	return true
}

func modelsEqual(a, b *aggregation.Model) bool {
	if !slices.Equal(a.Keys(), b.Keys()) {
		return false
	}
	return slices.Equal(a.Values(), b.Values())
}

// SetRowGroupingModel replaces the grouping fields and fires
// rowGroupingModelChange.
func (g *Grid) SetRowGroupingModel(fields []string) {
	if slices.Equal(g.store.State().RowGroupingModel, fields) {
		return
	}
	next := slices.Clone(fields)
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.RowGroupingModel = next
		return s
	})
	g.hydrateRows()
	g.store.Publish(gridstate.RowGroupingModelChange, slices.Clone(next))
}

// SetRowExpansion expands or collapses a group. The choice survives rebuilds
// of the tree.
func (g *Grid) SetRowExpansion(id rows.RowID, expanded bool) {
	g.expansion[id] = expanded
	state := g.store.State()
	node, ok := state.Rows.Tree[id]
	if !ok || node.Type != rows.NodeGroup || node.ChildrenExpanded == expanded {
		return
	}
	next := state.Rows.Clone()
	updated := *node
	updated.ChildrenExpanded = expanded
	next.Tree[id] = &updated
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.Rows = next
		return s
	})
	g.refreshVisibleRows()
}

// SetFilterModel keeps the leaves whose field keys equal the given values.
func (g *Grid) SetFilterModel(filter map[string]string) {
	next := maps.Clone(filter)
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.FilterModel = next
		return s
	})
	g.refreshVisibleRows()
}

// SetSortModel orders sibling rows by the given fields.
func (g *Grid) SetSortModel(model []gridstate.SortItem) {
	next := slices.Clone(model)
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.SortModel = next
		return s
	})
	g.refreshVisibleRows()
}

// SetPaginationModel selects the visible page.
func (g *Grid) SetPaginationModel(p gridstate.Pagination) {
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.Pagination = p
		return s
	})
	g.refreshVisibleRows()
}

// SetUniformRowHeight changes the base row height.
func (g *Grid) SetUniformRowHeight(h int) {
	g.heights.SetUniformRowHeight(h)
}

// SetDensity changes the density.
func (g *Grid) SetDensity(d gridstate.Density) {
	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.Density = d
		return s
	})
	g.heights.SetDensity(d)
}

// SetRowHeight overrides the height of one row.
func (g *Grid) SetRowHeight(id rows.RowID, height float64) {
	g.heights.SetRowHeight(id, height)
}

// StoreRowHeightMeasurement delivers a measured height for an auto-height row.
func (g *Grid) StoreRowHeightMeasurement(id rows.RowID, height float64, position string) {
	g.heights.StoreRowHeightMeasurement(id, height, position)
}

// ResetRowHeights drops every cached row height.
func (g *Grid) ResetRowHeights() {
	g.heights.ResetRowHeights()
}

// RestoreState applies a snapshot in one pass and fires the events of the
// models it changed.
func (g *Grid) RestoreState(snap gridstate.Snapshot) {
	state := g.store.State()
	model := snap.AggregationModel
	if model == nil {
		model = aggregation.NewModel()
	}
	aggChanged := !modelsEqual(state.AggregationModel, model)
	groupingChanged := !slices.Equal(state.RowGroupingModel, snap.RowGroupingModel)
	density := snap.Density
	if density == "" {
		density = gridstate.DensityStandard
	}

	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.AggregationModel = model.Clone()
		s.RowGroupingModel = slices.Clone(snap.RowGroupingModel)
		s.FilterModel = maps.Clone(snap.FilterModel)
		s.SortModel = slices.Clone(snap.SortModel)
		s.Pagination = snap.Pagination
		s.Density = density
		return s
	})
	g.updateAggregationRules()
	g.heights.StageDensity(density)
	g.hydrateRows()

	if aggChanged {
		g.store.Publish(gridstate.AggregationModelChange, model.Clone())
	}
	if groupingChanged {
		g.store.Publish(gridstate.RowGroupingModelChange, slices.Clone(snap.RowGroupingModel))
	}
}
