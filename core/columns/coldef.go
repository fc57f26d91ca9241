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

import "github.com/google/gridcore/core/rows"

// ColumnType is the declared value type of a column.
type ColumnType string

const (
	TypeString       ColumnType = "string"
	TypeNumber       ColumnType = "number"
	TypeDate         ColumnType = "date"
	TypeDateTime     ColumnType = "dateTime"
	TypeBoolean      ColumnType = "boolean"
	TypeSingleSelect ColumnType = "singleSelect"
)

// ColumnDef describes a grid column as the core consumes it.
type ColumnDef struct {
	Field      string // must not contain any of the following characters: & = : ,
	HeaderName string
	Type       ColumnType

	// Aggregable marks the column as usable in the aggregation model.
	Aggregable bool
	// AvailableAggregationFunctions restricts the functions usable on the column.
	// nil means "every function compatible with Type".
	AvailableAggregationFunctions []string

	// GroupingValueGetter derives the grouping key of a row. nil reads the field.
	GroupingValueGetter func(row rows.RowEntry) (string, bool)
}

// NewColumnDef creates an aggregable column.
func NewColumnDef(field, headerName string, colType ColumnType) *ColumnDef {
	return &ColumnDef{
		Field:      field,
		HeaderName: headerName,
		Type:       colType,
		Aggregable: true,
	}
}

// EffectiveType returns the declared type, defaulting to string.
func (cd *ColumnDef) EffectiveType() ColumnType {
	if cd.Type == "" {
		return TypeString
	}
	return cd.Type
}

// DisplayName returns the header name, falling back to the field.
func (cd *ColumnDef) DisplayName() string {
	if cd.HeaderName == "" {
		return cd.Field
	}
	return cd.HeaderName
}

// Lookup maps fields to column definitions.
type Lookup map[string]*ColumnDef

// NewLookup indexes defs by field. Later definitions win on duplicate fields.
func NewLookup(defs []*ColumnDef) Lookup {
	lookup := make(Lookup, len(defs))
	for _, def := range defs {
		if def != nil {
			lookup[def.Field] = def
		}
	}
	return lookup
}

// KeyGetter returns a grouping key getter honoring GroupingValueGetter.
func (l Lookup) KeyGetter() rows.KeyGetter {
	return func(row rows.RowEntry, field string) (string, bool) {
		if def, ok := l[field]; ok && def.GroupingValueGetter != nil {
			return def.GroupingValueGetter(row)
		}
		return rows.DefaultKeyGetter(row, field)
	}
}
