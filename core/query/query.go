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

// Package query maps the inspector URL to grid models and back.
//
// URL format:
//
//	/grid?columns=a,b&grouped=region,category&agg=price:avg,id:size
//	     &sort=price:desc&filter:region=EMEA&collapsed=<group id>
//	     &page=0&pageSize=25&density=compact
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/gridstate"
)

// AggregationItem is one entry of the aggregation model, in URL order.
type AggregationItem struct {
	Field    string
	Function string
}

// Query represents the parsed state of a grid view URL
type Query struct {
	// Base path (e.g., "/grid")
	Path string

	Columns        []string          // Visible columns in display order (empty = all)
	GroupedColumns []string          // Row grouping model
	Aggregation    []AggregationItem // Aggregation model
	Filters        map[string]string // Column filters (columnName -> filterValue)
	Sort           []gridstate.SortItem
	Collapsed      []string // Collapsed group ids
	Page           int
	PageSize       int // 0 = show all
	Density        gridstate.Density
}

// DefaultPageSize is used when the URL carries no page size.
const DefaultPageSize = 25

// NewQuery creates a Query from a URL. Malformed values are ignored.
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:     u.Path,
		Filters:  make(map[string]string),
		PageSize: DefaultPageSize,
		Density:  gridstate.DensityStandard,
	}
	q := u.Query()

	state.Columns = splitList(q.Get("columns"))
	state.GroupedColumns = splitList(q.Get("grouped"))

	for _, part := range splitList(q.Get("agg")) {
		field, fn, ok := strings.Cut(part, ":")
		if !ok || field == "" || fn == "" {
			continue
		}
		state.Aggregation = setAggregation(state.Aggregation, field, fn)
	}

	for _, part := range splitList(q.Get("sort")) {
		field, dir, _ := strings.Cut(part, ":")
		if field == "" {
			continue
		}
		direction := gridstate.SortAsc
		if dir == string(gridstate.SortDesc) {
			direction = gridstate.SortDesc
		}
		state.Sort = append(state.Sort, gridstate.SortItem{Field: field, Sort: direction})
	}

	// Format: filter:columnName=value
	for key, values := range q {
		if strings.HasPrefix(key, "filter:") && len(values) > 0 && values[0] != "" {
			state.Filters[strings.TrimPrefix(key, "filter:")] = values[0]
		}
	}

	state.Collapsed = slices.DeleteFunc(slices.Clone(q["collapsed"]), func(id string) bool { return id == "" })

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page >= 0 {
		state.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil && size >= 0 {
		state.PageSize = size
	}
	switch d := gridstate.Density(q.Get("density")); d {
	case gridstate.DensityCompact, gridstate.DensityComfortable:
		state.Density = d
	}

	state.reorderColumns()
	return state
}

// FromSnapshot creates a Query showing the models of snap.
func FromSnapshot(path string, snap gridstate.Snapshot) *Query {
	state := &Query{
		Path:           path,
		GroupedColumns: slices.Clone(snap.RowGroupingModel),
		Filters:        make(map[string]string),
		Sort:           slices.Clone(snap.SortModel),
		Page:           snap.Pagination.Page,
		PageSize:       snap.Pagination.PageSize,
		Density:        snap.Density,
	}
	if state.Density == "" {
		state.Density = gridstate.DensityStandard
	}
	for field, value := range snap.FilterModel {
		state.Filters[field] = value
	}
	snap.AggregationModel.Range(func(field, fn string) bool {
		state.Aggregation = append(state.Aggregation, AggregationItem{Field: field, Function: fn})
		return true
	})
	return state
}

// Snapshot returns the grid models encoded in the query.
func (s *Query) Snapshot() gridstate.Snapshot {
	model := aggregation.NewModel()
	for _, item := range s.Aggregation {
		model.Set(item.Field, item.Function)
	}
	filters := make(map[string]string, len(s.Filters))
	for field, value := range s.Filters {
		filters[field] = value
	}
	return gridstate.Snapshot{
		AggregationModel: model,
		RowGroupingModel: slices.Clone(s.GroupedColumns),
		FilterModel:      filters,
		SortModel:        slices.Clone(s.Sort),
		Pagination:       gridstate.Pagination{Page: s.Page, PageSize: s.PageSize},
		Density:          s.Density,
	}
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func setAggregation(items []AggregationItem, field, fn string) []AggregationItem {
	for i, item := range items {
		if item.Field == field {
			items[i].Function = fn
			return items
		}
	}
	return append(items, AggregationItem{Field: field, Function: fn})
}

// reorderColumns moves grouped columns to the front, in grouping order.
func (s *Query) reorderColumns() {
	if len(s.Columns) == 0 {
		return
	}
	ordered := make([]string, 0, len(s.Columns))
	for _, col := range s.GroupedColumns {
		if slices.Contains(s.Columns, col) {
			ordered = append(ordered, col)
		}
	}
	for _, col := range s.Columns {
		if !slices.Contains(ordered, col) {
			ordered = append(ordered, col)
		}
	}
	s.Columns = ordered
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := *s
	clone.Columns = slices.Clone(s.Columns)
	clone.GroupedColumns = slices.Clone(s.GroupedColumns)
	clone.Aggregation = slices.Clone(s.Aggregation)
	clone.Sort = slices.Clone(s.Sort)
	clone.Collapsed = slices.Clone(s.Collapsed)
	clone.Filters = make(map[string]string, len(s.Filters))
	for colName, filterValue := range s.Filters {
		clone.Filters[colName] = filterValue
	}
	return &clone
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{Path: s.Path}
	q := u.Query()

	if len(s.Columns) > 0 {
		q.Set("columns", strings.Join(s.Columns, ","))
	}
	if len(s.GroupedColumns) > 0 {
		q.Set("grouped", strings.Join(s.GroupedColumns, ","))
	}
	if len(s.Aggregation) > 0 {
		parts := make([]string, len(s.Aggregation))
		for i, item := range s.Aggregation {
			parts[i] = item.Field + ":" + item.Function
		}
		q.Set("agg", strings.Join(parts, ","))
	}
	if len(s.Sort) > 0 {
		parts := make([]string, len(s.Sort))
		for i, item := range s.Sort {
			parts[i] = item.Field + ":" + string(item.Sort)
		}
		q.Set("sort", strings.Join(parts, ","))
	}
	for colName, filterValue := range s.Filters {
		if filterValue != "" {
			q.Set("filter:"+colName, filterValue)
		}
	}
	for _, id := range s.Collapsed {
		q.Add("collapsed", id)
	}

	// Pagination is always included so that a visited URL never falls back
	// to the configured defaults.
	q.Set("page", strconv.Itoa(s.Page))
	q.Set("pageSize", strconv.Itoa(s.PageSize))
	if s.Density != "" && s.Density != gridstate.DensityStandard {
		q.Set("density", string(s.Density))
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// IsColumnVisible reports whether a column is shown. An empty column list
// shows every column.
func (s *Query) IsColumnVisible(column string) bool {
	return len(s.Columns) == 0 || slices.Contains(s.Columns, column)
}

// WithColumnToggled returns a URL with the column shown or hidden. all lists
// every column and is used when the query shows all of them.
func (s *Query) WithColumnToggled(column string, all []string) safehtml.URL {
	newState := s.Clone()
	if len(newState.Columns) == 0 {
		newState.Columns = slices.Clone(all)
	}
	if i := slices.Index(newState.Columns, column); i >= 0 {
		newState.Columns = slices.Delete(newState.Columns, i, i+1)
	} else {
		newState.Columns = append(newState.Columns, column)
	}
	newState.reorderColumns()
	return newState.ToSafeURL()
}

// IsColumnGrouped checks if a column is in the grouped columns list
func (s *Query) IsColumnGrouped(column string) bool {
	return slices.Contains(s.GroupedColumns, column)
}

// WithGroupedColumnToggled returns a URL with the grouped column toggled.
// Newly grouped columns are appended to the grouping order.
func (s *Query) WithGroupedColumnToggled(column string) safehtml.URL {
	newState := s.Clone()
	if i := slices.Index(newState.GroupedColumns, column); i >= 0 {
		newState.GroupedColumns = slices.Delete(newState.GroupedColumns, i, i+1)
	} else {
		newState.GroupedColumns = append(newState.GroupedColumns, column)
	}
	newState.Collapsed = nil
	newState.Page = 0
	newState.reorderColumns()
	return newState.ToSafeURL()
}

// WithFilterAndUngrouped returns a URL that adds a filter for the column and
// removes it from grouping
func (s *Query) WithFilterAndUngrouped(column, value string) safehtml.URL {
	newState := s.Clone()
	newState.Filters[column] = value
	newState.GroupedColumns = slices.DeleteFunc(newState.GroupedColumns, func(c string) bool { return c == column })
	newState.Page = 0
	newState.reorderColumns()
	return newState.ToSafeURL()
}

// WithoutFilter returns a URL with the filter of column removed.
func (s *Query) WithoutFilter(column string) safehtml.URL {
	newState := s.Clone()
	delete(newState.Filters, column)
	newState.Page = 0
	return newState.ToSafeURL()
}

// AggregationFunction returns the function aggregating column, or "".
func (s *Query) AggregationFunction(column string) string {
	for _, item := range s.Aggregation {
		if item.Field == column {
			return item.Function
		}
	}
	return ""
}

// WithAggregation returns a URL aggregating column with fn. An empty fn
// removes the column from the aggregation model.
func (s *Query) WithAggregation(column, fn string) safehtml.URL {
	newState := s.Clone()
	if fn == "" {
		newState.Aggregation = slices.DeleteFunc(newState.Aggregation, func(item AggregationItem) bool {
			return item.Field == column
		})
	} else {
		newState.Aggregation = setAggregation(newState.Aggregation, column, fn)
	}
	return newState.ToSafeURL()
}

// SortDirection returns the sort direction of column, or "".
func (s *Query) SortDirection(column string) gridstate.SortDirection {
	for _, item := range s.Sort {
		if item.Field == column {
			return item.Sort
		}
	}
	return ""
}

// WithSortToggled returns a URL sorting by column alone, cycling through
// ascending, descending and unsorted.
func (s *Query) WithSortToggled(column string) safehtml.URL {
	newState := s.Clone()
	switch s.SortDirection(column) {
	case "":
		newState.Sort = []gridstate.SortItem{{Field: column, Sort: gridstate.SortAsc}}
	case gridstate.SortAsc:
		newState.Sort = []gridstate.SortItem{{Field: column, Sort: gridstate.SortDesc}}
	default:
		newState.Sort = nil
	}
	return newState.ToSafeURL()
}

// IsCollapsed reports whether a group is collapsed.
func (s *Query) IsCollapsed(groupID string) bool {
	return slices.Contains(s.Collapsed, groupID)
}

// WithCollapsedToggled returns a URL with the group collapsed or expanded.
func (s *Query) WithCollapsedToggled(groupID string) safehtml.URL {
	newState := s.Clone()
	if i := slices.Index(newState.Collapsed, groupID); i >= 0 {
		newState.Collapsed = slices.Delete(newState.Collapsed, i, i+1)
	} else {
		newState.Collapsed = append(newState.Collapsed, groupID)
	}
	return newState.ToSafeURL()
}

// WithPage returns a URL showing another page.
func (s *Query) WithPage(page int) safehtml.URL {
	newState := s.Clone()
	newState.Page = max(page, 0)
	return newState.ToSafeURL()
}

// WithDensity returns a URL with another row density.
func (s *Query) WithDensity(density gridstate.Density) safehtml.URL {
	newState := s.Clone()
	newState.Density = density
	return newState.ToSafeURL()
}
