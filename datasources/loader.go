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

// Package datasources loads grid rows from files. Column types are inferred
// from the data and can be refined by configured column definitions.
package datasources

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/rows"
)

// IDField is the field used as the row id when a row carries it.
const IDField = "id"

// Source is the result of loading a file.
type Source struct {
	Rows    []rows.RowEntry
	Columns []*columns.ColumnDef
}

// DataSourceLoader is implemented by every file loader.
type DataSourceLoader interface {
	// SourceType returns the identifier of the loader, e.g. "csv".
	SourceType() string
	// Extensions lists the file extensions handled by the loader.
	Extensions() []string
	Load(path string) (*Source, error)
}

// ApplyColumns overrides inferred columns with configured definitions.
// Configured columns unknown to the source are appended.
func (s *Source) ApplyColumns(defs []*columns.ColumnDef) {
	byField := make(map[string]int, len(s.Columns))
	for i, col := range s.Columns {
		byField[col.Field] = i
	}
	for _, def := range defs {
		merged := *def
		if i, ok := byField[def.Field]; ok {
			if merged.Type == "" {
				merged.Type = s.Columns[i].Type
			}
			s.Columns[i] = &merged
			continue
		}
		s.Columns = append(s.Columns, &merged)
	}
}

// rowID returns the id of the index-th row.
func rowID(data *structpb.Struct, index int) rows.RowID {
	v, ok := data.GetFields()[IDField]
	if ok {
		switch v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			return rows.RowID(strconv.FormatFloat(v.GetNumberValue(), 'f', -1, 64))
		case *structpb.Value_StringValue:
			if v.GetStringValue() != "" {
				return rows.RowID(v.GetStringValue())
			}
		}
	}
	return rows.RowID(fmt.Sprintf("row-%d", index))
}

// inferColumnType returns the narrowest type every non-empty value fits.
func inferColumnType(values []string) columns.ColumnType {
	isNumber, isBool, isDate, hasTime, seen := true, true, true, false, false
	for _, val := range values {
		if val == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			isNumber = false
		}
		if _, err := strconv.ParseBool(val); err != nil || isDigits(val) {
			isBool = false
		}
		if _, err := columns.ParseDate(val); err != nil {
			isDate = false
		} else if strings.Contains(val, "T") {
			hasTime = true
		}
	}
	switch {
	case !seen:
		return columns.TypeString
	case isNumber:
		return columns.TypeNumber
	case isBool:
		return columns.TypeBoolean
	case isDate && hasTime:
		return columns.TypeDateTime
	case isDate:
		return columns.TypeDate
	default:
		return columns.TypeString
	}
}

func isDigits(s string) bool {
	return strings.Trim(s, "0123456789") == ""
}

// typedValue converts a text cell to a value of colType. Empty cells are null.
func typedValue(colType columns.ColumnType, val string) *structpb.Value {
	if val == "" {
		return structpb.NewNullValue()
	}
	switch colType {
	case columns.TypeNumber:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return structpb.NewNumberValue(f)
		}
	case columns.TypeBoolean:
		if b, err := strconv.ParseBool(val); err == nil {
			return structpb.NewBoolValue(b)
		}
	}
	return structpb.NewStringValue(val)
}
