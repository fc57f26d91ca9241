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

package columns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/rows"
)

func TestNewColumnDefDefaults(t *testing.T) {
	def := NewColumnDef("price", "", "")
	assert.True(t, def.Aggregable)
	assert.Nil(t, def.AvailableAggregationFunctions)
	assert.Equal(t, TypeString, def.EffectiveType())
	assert.Equal(t, "price", def.DisplayName())
}

func TestLookupKeyGetter(t *testing.T) {
	upper := NewColumnDef("name", "Name", TypeString)
	upper.GroupingValueGetter = func(row rows.RowEntry) (string, bool) {
		v, ok := row.Field("name")
		return strings.ToUpper(v.GetStringValue()), ok
	}
	lookup := NewLookup([]*ColumnDef{upper, NewColumnDef("qty", "Qty", TypeNumber), nil})

	data, _ := structpb.NewStruct(map[string]any{"name": "ada", "qty": 2})
	row := rows.RowEntry{ID: "1", Data: data}

	getKey := lookup.KeyGetter()
	key, ok := getKey(row, "name")
	assert.True(t, ok)
	assert.Equal(t, "ADA", key)

	key, ok = getKey(row, "qty")
	assert.True(t, ok)
	assert.Equal(t, "2", key)

	_, ok = getKey(row, "missing")
	assert.False(t, ok)
}

func TestCompareValues(t *testing.T) {
	num := structpb.NewNumberValue
	str := structpb.NewStringValue
	tests := []struct {
		name    string
		colType ColumnType
		a, b    *structpb.Value
		want    int
	}{
		{"numbers", TypeNumber, num(2), num(10), -1},
		{"equal numbers", TypeNumber, num(3), num(3), 0},
		{"strings", TypeString, str("b"), str("a"), 1},
		{"dates", TypeDate, str("2024-01-05"), str("2023-12-31"), 1},
		{"date times", TypeDateTime, str("2024-01-05T10:00:00Z"), str("2024-01-05T11:00:00Z"), -1},
		{"bad date sorts last", TypeDate, str("soon"), str("2023-12-31"), 1},
		{"booleans", TypeBoolean, structpb.NewBoolValue(false), structpb.NewBoolValue(true), -1},
		{"missing sorts last", TypeNumber, nil, num(1), 1},
		{"null sorts last", TypeString, str("a"), structpb.NewNullValue(), -1},
		{"mixed kinds fall back to text", TypeNumber, num(5), str("4"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValues(tt.colType, tt.a, tt.b))
		})
	}
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, -1, CompareKeys("9", "10"))
	assert.Equal(t, 1, CompareKeys("b", "a"))
	assert.Equal(t, 1, CompareKeys("9", "10a"))
}
