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
	"fmt"
	"maps"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/aggregation"
)

// Snapshot is the restorable part of a grid state: the models a user can
// change. Trees, lookups and positions are derived and not part of it.
type Snapshot struct {
	AggregationModel *aggregation.Model
	RowGroupingModel []string
	FilterModel      map[string]string
	SortModel        []SortItem
	Pagination       Pagination
	Density          Density
}

// Snapshot extracts the restorable models of s.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		AggregationModel: s.AggregationModel.Clone(),
		RowGroupingModel: slices.Clone(s.RowGroupingModel),
		FilterModel:      maps.Clone(s.FilterModel),
		SortModel:        slices.Clone(s.SortModel),
		Pagination:       s.Pagination,
		Density:          s.Density,
	}
}

// ToStruct encodes the snapshot. Ordered models are encoded as lists since
// struct fields have no order.
func (s Snapshot) ToStruct() (*structpb.Struct, error) {
	aggModel := []any{}
	s.AggregationModel.Range(func(field, fn string) bool {
		aggModel = append(aggModel, map[string]any{"field": field, "function": fn})
		return true
	})
	grouping := make([]any, len(s.RowGroupingModel))
	for i, field := range s.RowGroupingModel {
		grouping[i] = field
	}
	filter := make(map[string]any, len(s.FilterModel))
	for field, value := range s.FilterModel {
		filter[field] = value
	}
	sortModel := make([]any, len(s.SortModel))
	for i, item := range s.SortModel {
		sortModel[i] = map[string]any{"field": item.Field, "sort": string(item.Sort)}
	}

	st, err := structpb.NewStruct(map[string]any{
		"aggregation": map[string]any{"model": aggModel},
		"rowGrouping": map[string]any{"model": grouping},
		"filter":      map[string]any{"model": filter},
		"sorting":     map[string]any{"sortModel": sortModel},
		"pagination": map[string]any{"paginationModel": map[string]any{
			"page":     s.Pagination.Page,
			"pageSize": s.Pagination.PageSize,
		}},
		"density": string(s.Density),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding grid state: %w", err)
	}
	return st, nil
}

// SnapshotFromStruct decodes a snapshot. Missing or mistyped entries keep
// their zero value.
func SnapshotFromStruct(st *structpb.Struct) Snapshot {
	fields := st.GetFields()
	s := Snapshot{
		AggregationModel: aggregation.NewModel(),
		FilterModel:      map[string]string{},
		Density:          Density(fields["density"].GetStringValue()),
	}
	if s.Density == "" {
		s.Density = DensityStandard
	}

	for _, item := range child(fields, "aggregation", "model").GetListValue().GetValues() {
		entry := item.GetStructValue().GetFields()
		field, fn := entry["field"].GetStringValue(), entry["function"].GetStringValue()
		if field != "" && fn != "" {
			s.AggregationModel.Set(field, fn)
		}
	}
	for _, item := range child(fields, "rowGrouping", "model").GetListValue().GetValues() {
		if field := item.GetStringValue(); field != "" {
			s.RowGroupingModel = append(s.RowGroupingModel, field)
		}
	}
	for field, value := range child(fields, "filter", "model").GetStructValue().GetFields() {
		s.FilterModel[field] = value.GetStringValue()
	}
	for _, item := range child(fields, "sorting", "sortModel").GetListValue().GetValues() {
		entry := item.GetStructValue().GetFields()
		sortItem := SortItem{Field: entry["field"].GetStringValue(), Sort: SortDirection(entry["sort"].GetStringValue())}
		if sortItem.Field == "" {
			continue
		}
		if sortItem.Sort != SortDesc {
			sortItem.Sort = SortAsc
		}
		s.SortModel = append(s.SortModel, sortItem)
	}
	page := child(fields, "pagination", "paginationModel").GetStructValue().GetFields()
	s.Pagination = Pagination{
		Page:     clampInt(page["page"].GetNumberValue()),
		PageSize: clampInt(page["pageSize"].GetNumberValue()),
	}
	return s
}

func child(fields map[string]*structpb.Value, outer, inner string) *structpb.Value {
	return fields[outer].GetStructValue().GetFields()[inner]
}

func clampInt(f float64) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// MarshalJSON encodes the snapshot as protobuf JSON.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	st, err := s.ToStruct()
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(st)
}

// UnmarshalSnapshot decodes a snapshot written by MarshalJSON.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return Snapshot{}, fmt.Errorf("decoding grid state: %w", err)
	}
	return SnapshotFromStruct(&st), nil
}
