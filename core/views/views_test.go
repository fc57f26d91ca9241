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
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/grid"
	"github.com/google/gridcore/core/query"
	"github.com/google/gridcore/demo"
)

func newOrdersGrid(t *testing.T, rawURL string) (*grid.Grid, *query.Query) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := query.NewQuery(u)
	snap := q.Snapshot()

	source := demo.Orders()
	g := grid.New(grid.Options{
		Columns:          source.Columns,
		Rows:             source.Rows,
		AggregationModel: snap.AggregationModel,
		RowGroupingModel: snap.RowGroupingModel,
		FilterModel:      snap.FilterModel,
		Pagination:       snap.Pagination,
		Density:          snap.Density,
	})
	t.Cleanup(g.Close)
	return g, q
}

func cellText(row RowView, field string) string {
	for _, cell := range row.Cells {
		if cell.Field == field {
			return cell.Text
		}
	}
	return ""
}

func TestBuildViewModelGrouped(t *testing.T) {
	g, q := newOrdersGrid(t, "/grid?grouped=region&agg=quantity:sum&pageSize=0")
	vm := BuildViewModel(g, q, "Orders")

	assert.Equal(t, 20, vm.TotalRows)
	require.Len(t, vm.Rows, 23)

	emea := vm.Rows[0]
	assert.Equal(t, "group", emea.Kind)
	assert.Equal(t, "EMEA (7)", emea.Label)
	assert.True(t, emea.Expanded)
	assert.Equal(t, "EMEA", cellText(emea, "region"))
	assert.Equal(t, "24", cellText(emea, "quantity"))
	assert.Equal(t, "leaf", vm.Rows[1].Kind)
	assert.Equal(t, emea.Height, vm.Rows[1].Top)

	require.Len(t, vm.PinnedBot, 1)
	assert.Equal(t, "61", cellText(vm.PinnedBot[0], "quantity"))
	assert.False(t, vm.NoRows)
}

func TestBuildViewModelHeaders(t *testing.T) {
	g, q := newOrdersGrid(t, "/grid?agg=quantity:sum")
	vm := BuildViewModel(g, q, "Orders")

	require.Len(t, vm.Headers, 8)
	byField := map[string]HeaderInfo{}
	for _, h := range vm.Headers {
		byField[h.Field] = h
	}

	quantity := byField["quantity"]
	assert.Equal(t, "Quantity", quantity.DisplayName)
	assert.Equal(t, "sum", quantity.AggregationLabel)
	var names []string
	for _, opt := range quantity.Aggregations {
		names = append(names, opt.Name)
		assert.Equal(t, opt.Name == "sum", opt.Selected)
	}
	assert.Equal(t, []string{"sum", "avg", "min", "max", "size"}, names)

	assert.Empty(t, byField["product"].Aggregations)
	assert.Len(t, vm.AllColumns, 8)
	assert.Len(t, vm.DensityLinks, 3)
}

func TestBuildViewModelPagination(t *testing.T) {
	g, q := newOrdersGrid(t, "/grid?page=10&pageSize=5")
	vm := BuildViewModel(g, q, "Orders")

	assert.Equal(t, 3, vm.Page)
	assert.True(t, vm.HasPrev)
	assert.False(t, vm.HasNext)
	assert.Len(t, vm.Rows, 5)
}

func TestBuildViewModelNoRows(t *testing.T) {
	g, q := newOrdersGrid(t, "/grid?filter:region=NOWHERE")
	vm := BuildViewModel(g, q, "Orders")

	assert.True(t, vm.NoRows)
	assert.Equal(t, "No rows", vm.NoRowsLabel)
}

func TestRenderText(t *testing.T) {
	g, q := newOrdersGrid(t, "/grid?grouped=region&agg=quantity:sum&pageSize=0")
	out := RenderText(BuildViewModel(g, q, "Orders"))

	assert.Contains(t, out, "Orders")
	assert.Contains(t, out, "Quantity (sum)")
	assert.Contains(t, out, "▾ EMEA (7)")
	assert.Contains(t, out, "Σ")
	assert.Contains(t, out, "rows: 23 of 20")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1+1+23+1+1)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "10.3333", FormatValue(structpb.NewNumberValue(31.0/3)))
	assert.Equal(t, "true", FormatValue(structpb.NewBoolValue(true)))
	assert.Equal(t, "", FormatValue(structpb.NewNullValue()))
	assert.Equal(t, "", FormatValue(nil))
}
