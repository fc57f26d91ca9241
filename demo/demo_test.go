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

package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/rows"
)

func TestOrders(t *testing.T) {
	source := Orders()
	require.Len(t, source.Rows, 20)
	assert.Equal(t, rows.RowID("1"), source.Rows[0].ID)

	lookup := columns.NewLookup(source.Columns)
	assert.Equal(t, columns.TypeSingleSelect, lookup["region"].Type)
	assert.Equal(t, "Price", lookup["price"].HeaderName)
	assert.False(t, lookup["product"].Aggregable)
}

func TestDefaultModelResolves(t *testing.T) {
	source := Orders()
	rules := aggregation.GetAggregationRules(columns.NewLookup(source.Columns), DefaultAggregationModel(), aggregation.Builtins())
	assert.Equal(t, []string{"quantity", "price", "ordered", "id"}, rules.Keys())
}
