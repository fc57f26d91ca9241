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

package views

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/safehtml"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/grid"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/query"
	"github.com/google/gridcore/core/rows"
)

// GridViewModel contains a hydrated grid formatted for template consumption
type GridViewModel struct {
	Title      string
	Headers    []HeaderInfo // Visible columns
	Rows       []RowView    // Visible rows of the current page
	PinnedTop  []RowView
	PinnedBot  []RowView
	AllColumns []ColumnInfo // All available columns with metadata
	CurrentURL safehtml.URL // Current URL for building toggle links

	NoRows      bool
	NoRowsLabel string

	// Pagination info
	TotalRows     int // Leaf rows in the grid
	DisplayedRows int // Rows on the current page, groups and footers included
	Page          int
	HasPrev       bool
	HasNext       bool
	PrevURL       safehtml.URL
	NextURL       safehtml.URL

	// Layout
	TotalHeight  float64
	Density      string
	DensityLinks []DensityLink
}

// HeaderInfo describes a visible column header.
type HeaderInfo struct {
	Field            string
	DisplayName      string
	SortDirection    string
	SortURL          safehtml.URL
	IsGrouped        bool
	GroupURL         safehtml.URL
	AggregationLabel string // Empty when the column is not aggregated
	Aggregations     []AggregationOption
}

// AggregationOption is a function a column can be aggregated with.
type AggregationOption struct {
	Name     string
	Label    string
	Selected bool
	URL      safehtml.URL // Selects the function, or clears it when selected
}

// ColumnInfo contains information about a column for UI display
type ColumnInfo struct {
	Name            string
	DisplayName     string
	Type            string
	IsVisible       bool
	IsGrouped       bool
	ToggleColumnURL safehtml.URL
	ToggleGroupURL  safehtml.URL
}

// DensityLink switches the row density.
type DensityLink struct {
	Name     string
	Selected bool
	URL      safehtml.URL
}

// RowView is a rendered row.
type RowView struct {
	ID     string
	Kind   string // leaf, group, footer or pinnedRow
	Depth  int
	Top    float64
	Height float64

	// Group rows only.
	Label     string
	Expanded  bool
	ToggleURL safehtml.URL

	Cells []CellView
}

// CellView is a rendered cell.
type CellView struct {
	Field      string
	Text       string
	Aggregated bool
	FilterURL  safehtml.URL // Set on group rows for the grouping column
}

// BuildViewModel formats the visible rows of g. q must describe the state g
// was built with.
func BuildViewModel(g *grid.Grid, q *query.Query, title string) GridViewModel {
	vm := GridViewModel{
		Title:      title,
		CurrentURL: q.ToSafeURL(),
		Page:       q.Page,
		Density:    string(q.Density),
	}

	visible := visibleColumns(g.Columns(), q)
	for _, col := range visible {
		vm.Headers = append(vm.Headers, buildHeader(g, q, col))
	}

	allFields := make([]string, 0, len(g.Columns()))
	for _, col := range g.Columns() {
		allFields = append(allFields, col.Field)
	}
	for _, col := range g.Columns() {
		vm.AllColumns = append(vm.AllColumns, ColumnInfo{
			Name:            col.Field,
			DisplayName:     col.DisplayName(),
			Type:            string(col.EffectiveType()),
			IsVisible:       q.IsColumnVisible(col.Field),
			IsGrouped:       q.IsColumnGrouped(col.Field),
			ToggleColumnURL: q.WithColumnToggled(col.Field, allFields),
			ToggleGroupURL:  q.WithGroupedColumnToggled(col.Field),
		})
	}

	state := g.TreeState()
	lookup := g.AggregationLookup()
	meta := g.RowsMeta()
	for i, entry := range g.VisibleRows() {
		row := buildRow(g, q, state, lookup, visible, entry.ID)
		if i < len(meta.Positions) {
			row.Top = meta.Positions[i]
		}
		vm.Rows = append(vm.Rows, row)
	}
	pinned := g.PinnedRows()
	for _, entry := range pinned.Top {
		vm.PinnedTop = append(vm.PinnedTop, buildRow(g, q, state, lookup, visible, entry.ID))
	}
	for _, entry := range pinned.Bottom {
		vm.PinnedBot = append(vm.PinnedBot, buildRow(g, q, state, lookup, visible, entry.ID))
	}

	vm.TotalRows = len(state.Tree.Leaves(rows.RootGroupID))
	vm.DisplayedRows = len(vm.Rows)
	vm.NoRows = vm.DisplayedRows == 0
	if vm.NoRows {
		vm.NoRowsLabel, _ = g.Texts().Text("noRowsLabel")
	}
	vm.TotalHeight = meta.CurrentPageTotalHeight

	if count := g.RowCount(); q.PageSize > 0 && count > 0 {
		// Pages past the end show the last page.
		vm.Page = min(q.Page, (count-1)/q.PageSize)
		vm.HasPrev = vm.Page > 0
		vm.HasNext = (vm.Page+1)*q.PageSize < count
		vm.PrevURL = q.WithPage(vm.Page - 1)
		vm.NextURL = q.WithPage(vm.Page + 1)
	}

	for _, d := range []gridstate.Density{gridstate.DensityCompact, gridstate.DensityStandard, gridstate.DensityComfortable} {
		vm.DensityLinks = append(vm.DensityLinks, DensityLink{
			Name:     string(d),
			Selected: d == q.Density,
			URL:      q.WithDensity(d),
		})
	}
	return vm
}

func visibleColumns(defs []*columns.ColumnDef, q *query.Query) []*columns.ColumnDef {
	if len(q.Columns) == 0 {
		return defs
	}
	lookup := columns.NewLookup(defs)
	visible := make([]*columns.ColumnDef, 0, len(q.Columns))
	for _, field := range q.Columns {
		if col, ok := lookup[field]; ok {
			visible = append(visible, col)
		}
	}
	return visible
}

func buildHeader(g *grid.Grid, q *query.Query, col *columns.ColumnDef) HeaderInfo {
	h := HeaderInfo{
		Field:            col.Field,
		DisplayName:      col.DisplayName(),
		SortDirection:    string(q.SortDirection(col.Field)),
		SortURL:          q.WithSortToggled(col.Field),
		IsGrouped:        q.IsColumnGrouped(col.Field),
		GroupURL:         q.WithGroupedColumnToggled(col.Field),
		AggregationLabel: g.AggregationLabel(col.Field),
	}
	current := q.AggregationFunction(col.Field)
	for _, name := range g.AvailableAggregationFunctions(col.Field) {
		fn, _ := g.AggregationFunctions().Get(name)
		opt := AggregationOption{
			Name:     name,
			Label:    aggregation.GetAggregationFunctionLabel(aggregation.Rule{FunctionName: name, Function: fn}, g.Texts()),
			Selected: name == current,
		}
		if opt.Selected {
			opt.URL = q.WithAggregation(col.Field, "")
		} else {
			opt.URL = q.WithAggregation(col.Field, name)
		}
		h.Aggregations = append(h.Aggregations, opt)
	}
	return h
}

func buildRow(g *grid.Grid, q *query.Query, state *rows.TreeState, lookup aggregation.Lookup, visible []*columns.ColumnDef, id rows.RowID) RowView {
	node := state.Tree[id]
	row := RowView{ID: string(id), Height: g.RowHeight(id)}
	if node == nil {
		return row
	}
	row.Kind = node.Type.String()
	row.Depth = max(node.Depth, 0)

	if node.Type == rows.NodeGroup {
		row.Label = fmt.Sprintf("%s (%d)", node.GroupingKey, len(state.Tree.Leaves(id)))
		row.Expanded = node.ChildrenExpanded
		row.ToggleURL = q.WithCollapsedToggled(string(id))
	}

	entry := state.Entry(id)
	for _, col := range visible {
		cell := CellView{Field: col.Field}
		if agg, ok := lookup.CellFor(node, col.Field); ok {
			cell.Text = FormatValue(agg.Value)
			cell.Aggregated = true
		} else if node.Type == rows.NodeGroup && node.GroupingField == col.Field {
			cell.Text = node.GroupingKey
			cell.FilterURL = q.WithFilterAndUngrouped(col.Field, node.GroupingKey)
		} else if v, ok := entry.Field(col.Field); ok {
			cell.Text = FormatValue(v)
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

// FormatValue renders a cell value. Numbers are rounded to four decimals.
func FormatValue(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(math.Round(k.NumberValue*1e4)/1e4, 'f', -1, 64)
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *structpb.Value_ListValue:
		parts := make([]string, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			parts = append(parts, FormatValue(item))
		}
		return fmt.Sprint(parts)
	default:
		return ""
	}
}
