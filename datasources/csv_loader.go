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
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/columns"
	"github.com/google/gridcore/core/rows"
)

// CsvLoader loads CSV files with a header row. Column types are inferred
// from every record.
type CsvLoader struct {
	// Delimiter defaults to ','.
	Delimiter rune
}

func NewCsvLoader() *CsvLoader {
	return &CsvLoader{Delimiter: ','}
}

func (l *CsvLoader) SourceType() string {
	return "csv"
}

func (l *CsvLoader) Extensions() []string {
	return []string{".csv"}
}

func (l *CsvLoader) Load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return l.Read(file)
}

// Read parses CSV data from r.
func (l *CsvLoader) Read(r io.Reader) (*Source, error) {
	reader := csv.NewReader(r)
	if l.Delimiter != 0 {
		reader.Comma = l.Delimiter
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	header, records := records[0], records[1:]
	source := &Source{
		Rows:    make([]rows.RowEntry, 0, len(records)),
		Columns: make([]*columns.ColumnDef, len(header)),
	}

	types := make([]columns.ColumnType, len(header))
	for i, name := range header {
		cells := make([]string, len(records))
		for j, record := range records {
			if i < len(record) {
				cells[j] = record[i]
			}
		}
		types[i] = inferColumnType(cells)
		source.Columns[i] = columns.NewColumnDef(name, name, types[i])
	}

	for j, record := range records {
		fields := make(map[string]*structpb.Value, len(header))
		for i, name := range header {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			fields[name] = typedValue(types[i], cell)
		}
		data := &structpb.Struct{Fields: fields}
		source.Rows = append(source.Rows, rows.RowEntry{ID: rowID(data, j), Data: data})
	}
	return source, nil
}
