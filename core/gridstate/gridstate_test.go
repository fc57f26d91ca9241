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

package gridstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/aggregation"
)

func TestStoreEvents(t *testing.T) {
	store := NewStore()
	var got []string
	unsubscribe := store.Subscribe(AggregationModelChange, func(e Event) {
		got = append(got, "first:"+string(e.Name))
	})
	store.Subscribe(AggregationModelChange, func(e Event) {
		model := e.Payload.(*aggregation.Model)
		got = append(got, "second:"+model.Keys()[0])
	})
	store.Subscribe(RowGroupingModelChange, func(Event) {
		got = append(got, "grouping")
	})

	model := aggregation.NewModel()
	model.Set("price", "sum")
	store.Publish(AggregationModelChange, model)
	assert.Equal(t, []string{"first:aggregationModelChange", "second:price"}, got)

	got = nil
	unsubscribe()
	store.Publish(AggregationModelChange, model)
	assert.Equal(t, []string{"second:price"}, got)
}

func TestStoreCommits(t *testing.T) {
	store := NewStore()
	assert.Equal(t, DensityStandard, store.State().Density)
	assert.NotNil(t, store.State().Rows.Tree.Root())

	store.SetState(func(s State) State {
		s.RowGroupingModel = []string{"category"}
		return s
	})
	store.SetRowsMeta(RowsMeta{Positions: []float64{0, 52}, CurrentPageTotalHeight: 104})

	assert.Equal(t, []string{"category"}, store.State().RowGroupingModel)
	assert.Equal(t, 104.0, store.RowsMeta().CurrentPageTotalHeight)
}

func TestDensityFactor(t *testing.T) {
	assert.Equal(t, 0.7, DensityCompact.Factor())
	assert.Equal(t, 1.0, DensityStandard.Factor())
	assert.Equal(t, 1.3, DensityComfortable.Factor())
	assert.Equal(t, 1.0, Density("spacious").Factor())
}

func TestSnapshotRoundTrip(t *testing.T) {
	model := aggregation.NewModel()
	model.Set("price", "sum")
	model.Set("shipped", "max")
	model.Set("name", "size")

	state := State{
		AggregationModel: model,
		RowGroupingModel: []string{"category", "name"},
		FilterModel:      map[string]string{"category": "books"},
		SortModel:        []SortItem{{Field: "price", Sort: SortDesc}, {Field: "name", Sort: SortAsc}},
		Pagination:       Pagination{Page: 2, PageSize: 25},
		Density:          DensityCompact,
	}

	data, err := state.Snapshot().MarshalJSON()
	require.NoError(t, err)

	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "shipped", "name"}, restored.AggregationModel.Keys())
	fn, _ := restored.AggregationModel.Get("shipped")
	assert.Equal(t, "max", fn)
	assert.Equal(t, state.RowGroupingModel, restored.RowGroupingModel)
	assert.Equal(t, state.FilterModel, restored.FilterModel)
	assert.Equal(t, state.SortModel, restored.SortModel)
	assert.Equal(t, state.Pagination, restored.Pagination)
	assert.Equal(t, DensityCompact, restored.Density)
}

func TestSnapshotFromMalformedStruct(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{
		"aggregation": map[string]any{"model": []any{
			map[string]any{"field": "price"},
			"garbage",
			map[string]any{"field": "qty", "function": "avg"},
		}},
		"sorting":    map[string]any{"sortModel": []any{map[string]any{"field": "qty", "sort": "sideways"}}},
		"pagination": map[string]any{"paginationModel": map[string]any{"page": -3, "pageSize": "ten"}},
		"density":    42,
	})
	require.NoError(t, err)

	s := SnapshotFromStruct(st)
	assert.Equal(t, []string{"qty"}, s.AggregationModel.Keys())
	assert.Equal(t, []SortItem{{Field: "qty", Sort: SortAsc}}, s.SortModel)
	assert.Equal(t, Pagination{}, s.Pagination)
	assert.Equal(t, DensityStandard, s.Density)
	assert.Nil(t, s.RowGroupingModel)

	_, err = UnmarshalSnapshot([]byte("{not json"))
	assert.Error(t, err)
}
