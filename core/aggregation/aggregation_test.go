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

package aggregation

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/pipes"
	"github.com/google/gridcore/core/rows"
)

var (
	booksID = rows.GroupRowID([]rows.PathItem{{Field: "category", Key: "books"}})
	gamesID = rows.GroupRowID([]rows.PathItem{{Field: "category", Key: "games"}})
)

func orderEntries(t *testing.T) []rows.RowEntry {
	t.Helper()
	raw := []struct {
		id     string
		fields map[string]any
	}{
		{"1", map[string]any{"category": "books", "name": "atlas", "price": 10, "shipped": "2024-01-05"}},
		{"2", map[string]any{"category": "games", "name": "chess", "price": 20.5, "shipped": "2024-03-01"}},
		{"3", map[string]any{"category": "books", "name": "novel", "price": 4, "shipped": "2023-12-31"}},
		{"4", map[string]any{"category": "games", "name": "go", "price": 5.5, "shipped": "2024-02-10"}},
	}
	entries := make([]rows.RowEntry, 0, len(raw))
	for _, r := range raw {
		data, err := structpb.NewStruct(r.fields)
		require.NoError(t, err)
		entries = append(entries, rows.RowEntry{ID: rows.RowID(r.id), Data: data})
	}
	return entries
}

func orderColumns() columns.Lookup {
	return columns.NewLookup([]*columns.ColumnDef{
		columns.NewColumnDef("category", "Category", columns.TypeString),
		columns.NewColumnDef("name", "Name", columns.TypeString),
		columns.NewColumnDef("price", "Price", columns.TypeNumber),
		columns.NewColumnDef("shipped", "Shipped", columns.TypeDate),
	})
}

func TestCanColumnHaveAggregationFunction(t *testing.T) {
	number := columns.NewColumnDef("price", "", columns.TypeNumber)
	untyped := columns.NewColumnDef("note", "", "")
	locked := columns.NewColumnDef("qty", "", columns.TypeNumber)
	locked.Aggregable = false
	allowList := columns.NewColumnDef("label", "", columns.TypeString)
	allowList.AvailableAggregationFunctions = []string{"sum"}

	tests := []struct {
		name   string
		colDef *columns.ColumnDef
		fnName string
		fn     *Function
		want   bool
	}{
		{"missing column", nil, "sum", Sum, false},
		{"not aggregable", locked, "sum", Sum, false},
		{"unregistered function", number, "median", nil, false},
		{"type match", number, "sum", Sum, true},
		{"type mismatch", untyped, "sum", Sum, false},
		{"unrestricted function", untyped, "size", Size, true},
		{"allow-list overrides type", allowList, "sum", Sum, true},
		{"allow-list excludes", allowList, "size", Size, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanColumnHaveAggregationFunction(tt.colDef, tt.fnName, tt.fn))
		})
	}
}

func TestGetAvailableAggregationFunctions(t *testing.T) {
	functions := Builtins()
	lookup := orderColumns()

	assert.Equal(t, []string{"sum", "avg", "min", "max", "size"}, GetAvailableAggregationFunctions(functions, lookup["price"]))
	assert.Equal(t, []string{"min", "max", "size"}, GetAvailableAggregationFunctions(functions, lookup["shipped"]))
	assert.Equal(t, []string{"size"}, GetAvailableAggregationFunctions(functions, lookup["name"]))

	restricted := columns.NewColumnDef("name", "", columns.TypeString)
	restricted.AvailableAggregationFunctions = []string{"size", "sum"}
	assert.Equal(t, []string{"sum", "size"}, GetAvailableAggregationFunctions(functions, restricted),
		"registration order wins over allow-list order")

	assert.Empty(t, GetAvailableAggregationFunctions(functions, nil))
}

func TestGetAggregationRules(t *testing.T) {
	// A function without a type restriction is accepted on a number column.
	functions := NewRegistry()
	unrestricted := &Function{NewState: Sum.NewState}
	functions.Register("sum", unrestricted)

	model := NewModel()
	model.Set("price", "sum")
	model.Set("ghost", "sum")
	model.Set("shipped", "median")

	lookup := orderColumns()
	rules := GetAggregationRules(lookup, model, functions)

	assert.Equal(t, []string{"price"}, rules.Keys())
	rule, ok := rules.Get("price")
	require.True(t, ok)
	assert.Equal(t, "sum", rule.FunctionName)
	assert.Same(t, unrestricted, rule.Function)
	assert.False(t, rules.Has("name"))

	rules.Range(func(field string, rule Rule) bool {
		assert.Contains(t, lookup, field)
		assert.True(t, CanColumnHaveAggregationFunction(lookup[field], rule.FunctionName, rule.Function))
		return true
	})
}

func TestAreAggregationRulesEqual(t *testing.T) {
	lookup := orderColumns()
	functions := Builtins()
	build := func(pairs ...string) *Rules {
		model := NewModel()
		for i := 0; i < len(pairs); i += 2 {
			model.Set(pairs[i], pairs[i+1])
		}
		return GetAggregationRules(lookup, model, functions)
	}

	rules := build("price", "sum", "shipped", "max")
	assert.True(t, AreAggregationRulesEqual(rules, rules))
	assert.True(t, AreAggregationRulesEqual(rules, build("price", "sum", "shipped", "max")))
	assert.True(t, AreAggregationRulesEqual(nil, build()))

	assert.False(t, AreAggregationRulesEqual(rules, build("price", "avg", "shipped", "max")))
	assert.False(t, AreAggregationRulesEqual(rules, build("shipped", "max", "price", "sum")), "reordering is a change")
	assert.False(t, AreAggregationRulesEqual(rules, build("price", "sum")))
	assert.False(t, AreAggregationRulesEqual(nil, rules))

	other := functions.Clone()
	other.Register("sum", &Function{ColumnTypes: Sum.ColumnTypes, NewState: Sum.NewState})
	model := NewModel()
	model.Set("price", "sum")
	model.Set("shipped", "max")
	assert.False(t, AreAggregationRulesEqual(rules, GetAggregationRules(lookup, model, other)),
		"same name, different function")
}

func groupedState(t *testing.T) *rows.TreeState {
	t.Helper()
	return rows.BuildGroupedTree(orderEntries(t), []string{"category"}, nil)
}

func footerEverywhere(*rows.Node) Position { return PositionFooter }

func TestAddFooterRowsDefaultPosition(t *testing.T) {
	state := groupedState(t)
	next := AddFooterRows(state, nil, true)

	assert.False(t, next.Tree[booksID].HasFooter())
	assert.False(t, next.Tree[gamesID].HasFooter())

	footer, ok := next.Tree[RootFooterRowID]
	require.True(t, ok)
	assert.Equal(t, rows.NodePinnedRow, footer.Type)
	assert.True(t, footer.IsAutoGenerated)
	assert.Equal(t, []rows.RowID{RootFooterRowID}, ids(next.PinnedRows.Bottom))
	assert.NotContains(t, next.DataRowIDToModel, RootFooterRowID)
	assert.NotContains(t, next.Tree.Root().Children, RootFooterRowID)
}

func TestAddFooterRowsNoRules(t *testing.T) {
	next := AddFooterRows(groupedState(t), footerEverywhere, false)
	assert.NotContains(t, next.Tree, RootFooterRowID)
	assert.Empty(t, next.PinnedRows.Bottom)
	assert.False(t, next.Tree[booksID].HasFooter())
}

func TestAddFooterRowsGroupFooters(t *testing.T) {
	state := groupedState(t)
	treeBefore := maps.Clone(state.Tree)
	depthsBefore := maps.Clone(state.Depths)

	next := AddFooterRows(state, footerEverywhere, true)

	for _, groupID := range []rows.RowID{booksID, gamesID} {
		group := next.Tree[groupID]
		require.True(t, group.HasFooter(), groupID)
		assert.Equal(t, GetAggregationFooterRowIDFromGroupID(groupID), group.FooterID)
		footer := next.Tree[group.FooterID]
		require.NotNil(t, footer)
		assert.Equal(t, rows.NodeFooter, footer.Type)
		assert.Equal(t, groupID, footer.Parent)
		assert.Equal(t, group.Depth+1, footer.Depth)
		assert.NotContains(t, group.Children, group.FooterID)
	}
	assert.Equal(t, 2+4, next.Depths[1], "leaves and footers at depth 1")

	// The input is left untouched.
	assert.Equal(t, treeBefore, state.Tree)
	assert.Equal(t, depthsBefore, state.Depths)
	assert.False(t, state.Tree[booksID].HasFooter())

	again := AddFooterRows(next, footerEverywhere, true)
	assert.Equal(t, next.Tree, again.Tree)
	assert.Equal(t, next.Depths, again.Depths)
	assert.Equal(t, ids(next.PinnedRows.Bottom), ids(again.PinnedRows.Bottom))
}

func TestAddFooterRowsRemovesUnwantedFooters(t *testing.T) {
	withFooters := AddFooterRows(groupedState(t), footerEverywhere, true)
	onlyGames := func(group *rows.Node) Position {
		if group.ID == gamesID {
			return PositionFooter
		}
		return PositionInline
	}

	next := AddFooterRows(withFooters, onlyGames, true)
	assert.False(t, next.Tree[booksID].HasFooter())
	assert.NotContains(t, next.Tree, GetAggregationFooterRowIDFromGroupID(booksID))
	assert.True(t, next.Tree[gamesID].HasFooter())
	assert.Equal(t, 2+4-1, next.Depths[1])

	// The root footer stays once added.
	assert.Contains(t, next.Tree, RootFooterRowID)

	none := AddFooterRows(next, onlyGames, false)
	assert.False(t, none.Tree[gamesID].HasFooter())
	assert.Equal(t, 4, none.Depths[1])
}

func TestAddFooterRowsClearsStaleFooterID(t *testing.T) {
	state := groupedState(t)
	stale := *state.Tree[booksID]
	stale.FooterID = "missing-footer"
	state.Tree[booksID] = &stale

	next := AddFooterRows(state, nil, true)
	assert.False(t, next.Tree[booksID].HasFooter())
	assert.Equal(t, rows.RowID("missing-footer"), state.Tree[booksID].FooterID)
}

func ids(entries []rows.RowEntry) []rows.RowID {
	out := make([]rows.RowID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestGetAggregationFooterRowIDFromGroupID(t *testing.T) {
	assert.Equal(t, RootFooterRowID, GetAggregationFooterRowIDFromGroupID(""))
	assert.Equal(t, RootFooterRowID, GetAggregationFooterRowIDFromGroupID(rows.RootGroupID))
	assert.Equal(t, rows.RowID("auto-generated-group-footer-auto-generated-row-category/books"),
		GetAggregationFooterRowIDFromGroupID(booksID))
}

func allRules(t *testing.T) *Rules {
	t.Helper()
	model := NewModel()
	model.Set("price", "sum")
	model.Set("shipped", "min")
	model.Set("name", "size")
	rules := GetAggregationRules(orderColumns(), model, Builtins())
	require.Equal(t, 3, rules.Len())
	return rules
}

func TestComputeLookup(t *testing.T) {
	lookup := ComputeLookup(groupedState(t), allRules(t), nil, nil)

	root := lookup[rows.RootGroupID]
	assert.Equal(t, PositionFooter, root["price"].Position)
	assert.Equal(t, 40.0, root["price"].Value.GetNumberValue())
	assert.Equal(t, "2023-12-31", root["shipped"].Value.GetStringValue())
	assert.Equal(t, 4.0, root["name"].Value.GetNumberValue())

	books := lookup[booksID]
	assert.Equal(t, PositionInline, books["price"].Position)
	assert.Equal(t, 14.0, books["price"].Value.GetNumberValue())
	assert.Equal(t, "2023-12-31", books["shipped"].Value.GetStringValue())

	games := lookup[gamesID]
	assert.Equal(t, 26.0, games["price"].Value.GetNumberValue())
	assert.Equal(t, "2024-02-10", games["shipped"].Value.GetStringValue())
	assert.Equal(t, 2.0, games["name"].Value.GetNumberValue())
}

func TestComputeLookupFiltered(t *testing.T) {
	withoutThree := func(leaf *rows.Node) bool { return leaf.ID != "3" }
	lookup := ComputeLookup(groupedState(t), allRules(t), nil, withoutThree)

	assert.Equal(t, 10.0, lookup[booksID]["price"].Value.GetNumberValue())
	assert.Equal(t, "2024-01-05", lookup[booksID]["shipped"].Value.GetStringValue())
	assert.Equal(t, 36.0, lookup[rows.RootGroupID]["price"].Value.GetNumberValue())
	assert.Equal(t, 3.0, lookup[rows.RootGroupID]["name"].Value.GetNumberValue())
}

func TestComputeLookupSkipsUnpositionedGroups(t *testing.T) {
	rootOnly := func(group *rows.Node) Position {
		if group.ID == rows.RootGroupID {
			return PositionFooter
		}
		return PositionNone
	}
	lookup := ComputeLookup(groupedState(t), allRules(t), rootOnly, nil)
	assert.Len(t, lookup, 1)
	assert.Equal(t, 40.0, lookup[rows.RootGroupID]["price"].Value.GetNumberValue())

	assert.Empty(t, ComputeLookup(groupedState(t), emptyRules(), nil, nil))
}

func emptyRules() *Rules {
	return GetAggregationRules(nil, nil, nil)
}

func TestNumericStateResults(t *testing.T) {
	values := []*structpb.Value{
		structpb.NewNumberValue(3),
		structpb.NewStringValue("n/a"),
		nil,
		structpb.NewNumberValue(9),
		structpb.NewBoolValue(true),
	}
	tests := []struct {
		name string
		fn   *Function
		want *structpb.Value
	}{
		{"sum", Sum, structpb.NewNumberValue(12)},
		{"avg", Avg, structpb.NewNumberValue(6)},
		{"min", Min, structpb.NewNumberValue(3)},
		{"max", Max, structpb.NewNumberValue(9)},
		{"size", Size, structpb.NewNumberValue(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.fn.NewState()
			for _, v := range values {
				s.Add(v)
			}
			assert.Equal(t, tt.want.GetNumberValue(), s.Value().GetNumberValue())
		})
	}

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Sum.NewState().Value().GetNumberValue())
		_, isNull := Avg.NewState().Value().GetKind().(*structpb.Value_NullValue)
		assert.True(t, isNull)
		_, isNull = Max.NewState().Value().GetKind().(*structpb.Value_NullValue)
		assert.True(t, isNull)
	})
}

func TestAvgCombinesOverLeaves(t *testing.T) {
	left, right := Avg.NewState(), Avg.NewState()
	left.Add(structpb.NewNumberValue(1))
	right.Add(structpb.NewNumberValue(2))
	right.Add(structpb.NewNumberValue(6))

	total := Avg.NewState()
	total.Combine(left)
	total.Combine(right)
	assert.Equal(t, 3.0, total.Value().GetNumberValue())
}

func TestCellFor(t *testing.T) {
	state := AddFooterRows(groupedState(t), footerEverywhere, true)
	lookup := ComputeLookup(state, allRules(t), footerEverywhere, nil)

	_, ok := lookup.CellFor(state.Tree[booksID], "price")
	assert.False(t, ok, "footer values are not shown inline")

	cell, ok := lookup.CellFor(state.Tree[state.Tree[booksID].FooterID], "price")
	require.True(t, ok)
	assert.Equal(t, 14.0, cell.Value.GetNumberValue())

	cell, ok = lookup.CellFor(state.Tree[RootFooterRowID], "price")
	require.True(t, ok)
	assert.Equal(t, 40.0, cell.Value.GetNumberValue())

	_, ok = lookup.CellFor(state.Tree["1"], "price")
	assert.False(t, ok)
}

func TestGetAggregationFunctionLabel(t *testing.T) {
	texts := locale.ForLanguage("de")
	assert.Equal(t, "Summe", GetAggregationFunctionLabel(Rule{FunctionName: "sum", Function: Sum}, texts))
	assert.Equal(t, "Total", GetAggregationFunctionLabel(Rule{FunctionName: "sum", Function: &Function{Label: "Total"}}, texts))
	assert.Equal(t, "median", GetAggregationFunctionLabel(Rule{FunctionName: "median", Function: &Function{}}, texts))
	assert.Equal(t, "sum", GetAggregationFunctionLabel(Rule{FunctionName: "sum", Function: Sum}, nil))
}

func TestRegisterFooterProcessor(t *testing.T) {
	reg := pipes.NewRegistry()
	rules := emptyRules()
	handle := RegisterFooterProcessor(reg, func() *Rules { return rules }, footerEverywhere)

	state := groupedState(t)
	out := pipes.ApplyFunc[*rows.TreeState, any](reg, pipes.HydrateRows, state, nil)
	assert.False(t, out.Tree[booksID].HasFooter())

	rules = allRules(t)
	out = pipes.ApplyFunc[*rows.TreeState, any](reg, pipes.HydrateRows, state, nil)
	assert.True(t, out.Tree[booksID].HasFooter())

	reg.Unregister(handle)
	out = pipes.ApplyFunc[*rows.TreeState, any](reg, pipes.HydrateRows, state, nil)
	assert.Same(t, state, out)
}
