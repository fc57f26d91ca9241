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

package datasources

import (
	"fmt"
	"os"
	"slices"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/rows"
)

// JsonLoader loads a JSON array of row objects, or an object holding that
// array under "rows".
type JsonLoader struct{}

func NewJsonLoader() *JsonLoader {
	return &JsonLoader{}
}

func (l *JsonLoader) SourceType() string {
	return "json"
}

func (l *JsonLoader) Extensions() []string {
	return []string{".json"}
}

func (l *JsonLoader) Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes JSON rows.
func (l *JsonLoader) Parse(data []byte) (*Source, error) {
	var doc structpb.Value
	if err := protojson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	list := doc.GetListValue()
	if obj := doc.GetStructValue(); obj != nil {
		list = obj.GetFields()["rows"].GetListValue()
	}
	if list == nil {
		return nil, fmt.Errorf("expected an array of rows")
	}

	source := &Source{Rows: make([]rows.RowEntry, 0, len(list.GetValues()))}
	var fields []string
	seen := make(map[string]bool)
	for i, v := range list.GetValues() {
		row := v.GetStructValue()
		if row == nil {
			return nil, fmt.Errorf("row %d is not an object", i)
		}
		source.Rows = append(source.Rows, rows.RowEntry{ID: rowID(row, i), Data: row})
		for name := range row.GetFields() {
			if !seen[name] {
				seen[name] = true
				fields = append(fields, name)
			}
		}
	}
	// Map iteration order is random; column order follows field names.
	slices.Sort(fields)

	for _, name := range fields {
		colType := inferJSONType(source.Rows, name)
		source.Columns = append(source.Columns, columns.NewColumnDef(name, name, colType))
	}
	return source, nil
}

func inferJSONType(entries []rows.RowEntry, field string) columns.ColumnType {
	var numbers, bools, others int
	var texts []string
	for _, entry := range entries {
		v, ok := entry.Field(field)
		if !ok {
			continue
		}
		switch v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			numbers++
		case *structpb.Value_BoolValue:
			bools++
		case *structpb.Value_StringValue:
			texts = append(texts, v.GetStringValue())
		case *structpb.Value_NullValue:
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return columns.TypeString
	case numbers > 0 && bools == 0 && len(texts) == 0:
		return columns.TypeNumber
	case bools > 0 && numbers == 0 && len(texts) == 0:
		return columns.TypeBoolean
	case len(texts) > 0 && numbers == 0 && bools == 0:
		if t := inferColumnType(texts); t == columns.TypeDate || t == columns.TypeDateTime {
			return t
		}
	}
	return columns.TypeString
}
