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

// Package demo provides a small orders data set for the inspector and the
// command line.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/datasources"
)

//go:embed data/orders.csv
var ordersCSV string

// Orders returns the demo orders with their column definitions.
func Orders() *datasources.Source {
	source, err := datasources.NewCsvLoader().Read(strings.NewReader(ordersCSV))
	if err != nil {
		panic(fmt.Sprintf("failed to import orders CSV: %v", err))
	}
	source.ApplyColumns(OrderColumns())
	return source
}

// OrderColumns refines the inferred order columns.
func OrderColumns() []*columns.ColumnDef {
	id := columns.NewColumnDef("id", "Order", columns.TypeNumber)
	id.AvailableAggregationFunctions = []string{"size"}

	region := columns.NewColumnDef("region", "Region", columns.TypeSingleSelect)
	category := columns.NewColumnDef("category", "Category", columns.TypeSingleSelect)
	product := columns.NewColumnDef("product", "Product", columns.TypeString)
	product.Aggregable = false

	return []*columns.ColumnDef{
		id,
		region,
		category,
		product,
		columns.NewColumnDef("quantity", "Quantity", columns.TypeNumber),
		columns.NewColumnDef("price", "Price", columns.TypeNumber),
		columns.NewColumnDef("ordered", "Ordered", columns.TypeDate),
		columns.NewColumnDef("shipped", "Shipped", columns.TypeBoolean),
	}
}

// DefaultAggregationModel sums quantities, averages prices and counts orders.
func DefaultAggregationModel() *aggregation.Model {
	model := aggregation.NewModel()
	model.Set("quantity", "sum")
	model.Set("price", "avg")
	model.Set("ordered", "max")
	model.Set("id", "size")
	return model
}

// DefaultRowGroupingModel groups orders by region, then category.
func DefaultRowGroupingModel() []string {
	return []string{"region", "category"}
}
