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
	"slices"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/pipes"
	"github.com/google/gridcore/core/rows"
)

// hydrateRows rebuilds the row tree, runs the hydrateRows pipeline and
// commits the result.
func (g *Grid) hydrateRows() {
	state := g.store.State()
	grouping := g.groupingFields(state.RowGroupingModel)

	tree := rows.BuildGroupedTree(g.entries, grouping, g.lookup.KeyGetter())
	for id, expanded := range g.expansion {
		if node, ok := tree.Tree[id]; ok && node.Type == rows.NodeGroup {
			updated := *node
			updated.ChildrenExpanded = expanded
			tree.Tree[id] = &updated
		}
	}
	for _, entry := range g.pinned.Top {
		tree = rows.AddPinnedRow(tree, entry.ID, entry.Data, rows.PinnedTop, false)
	}
	for _, entry := range g.pinned.Bottom {
		tree = rows.AddPinnedRow(tree, entry.ID, entry.Data, rows.PinnedBottom, false)
	}
	tree = pipes.ApplyFunc[*rows.TreeState, any](g.pipes, pipes.HydrateRows, tree, nil)

	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.Rows = tree
		return s
	})
	g.logger.Debug("rows hydrated",
		"rows", len(g.entries),
		"grouping", grouping,
		"max_depth", tree.Depths.MaxDepth())
	g.refreshVisibleRows()
}

// groupingFields keeps the grouping fields that name a known column, once.
func (g *Grid) groupingFields(model []string) []string {
	var fields []string
	for _, field := range model {
		if _, ok := g.lookup[field]; ok && !slices.Contains(fields, field) {
			fields = append(fields, field)
		}
	}
	return fields
}

// refreshVisibleRows recomputes the current page and the aggregated values of
// the filtered rows, then the row heights.
func (g *Grid) refreshVisibleRows() {
	state := g.store.State()
	include := g.filterPredicate(state)

	ids := rows.Flatten(state.Rows.Tree, rows.FlattenOptions{
		Include: include,
		Less:    g.sortLess(state),
	})
	rowCount := len(ids)
	ids = paginate(ids, state.Pagination)

	visible := make([]rows.RowEntry, len(ids))
	for i, id := range ids {
		visible[i] = state.Rows.Entry(id)
	}
	lookup := aggregation.ComputeLookup(state.Rows, state.AggregationRules, g.position, include)

	g.store.SetState(func(s gridstate.State) gridstate.State {
		s.VisibleRows = visible
		s.RowCount = rowCount
		s.AggregationLookup = lookup
		return s
	})
	g.heights.Hydrate()
}

// filterPredicate keeps the leaves whose grouping key equals the filter value
// of every filtered field.
func (g *Grid) filterPredicate(state gridstate.State) func(*rows.Node) bool {
	if len(state.FilterModel) == 0 {
		return nil
	}
	getKey := g.lookup.KeyGetter()
	data := state.Rows.DataRowIDToModel
	return func(leaf *rows.Node) bool {
		entry := rows.RowEntry{ID: leaf.ID, Data: data[leaf.ID]}
		for field, want := range state.FilterModel {
			if key, _ := getKey(entry, field); key != want {
				return false
			}
		}
		return true
	}
}

// sortLess orders sibling leaves by their values and sibling groups by their
// keys when their grouping field is sorted.
func (g *Grid) sortLess(state gridstate.State) func(a, b *rows.Node) bool {
	model := state.SortModel
	if len(model) == 0 {
		return nil
	}
	data := state.Rows.DataRowIDToModel
	return func(a, b *rows.Node) bool {
		if a.Type != b.Type {
			return false
		}
		for _, item := range model {
			cmp := 0
			switch a.Type {
			case rows.NodeLeaf:
				colType := columns.TypeString
				if def, ok := g.lookup[item.Field]; ok {
					colType = def.EffectiveType()
				}
				cmp = columns.CompareValues(colType,
					data[a.ID].GetFields()[item.Field],
					data[b.ID].GetFields()[item.Field])
			case rows.NodeGroup:
				if a.GroupingField != item.Field || b.GroupingField != item.Field {
					continue
				}
				cmp = columns.CompareKeys(a.GroupingKey, b.GroupingKey)
			}
			if cmp == 0 {
				continue
			}
			if item.Sort == gridstate.SortDesc {
				cmp = -cmp
			}
			return cmp < 0
		}
		return false
	}
}

// paginate returns the rows of the requested page. Pages past the end show
// the last page.
func paginate(ids []rows.RowID, p gridstate.Pagination) []rows.RowID {
	if p.PageSize <= 0 || len(ids) == 0 {
		return ids
	}
	lastPage := (len(ids) - 1) / p.PageSize
	page := min(max(p.Page, 0), lastPage)
	start := page * p.PageSize
	end := min(start+p.PageSize, len(ids))
	return ids[start:end]
}
