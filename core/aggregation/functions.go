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

package aggregation

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/gridcore/core/columns"
)

// State accumulates the values of one field for one group. States of sibling
// groups are combined into their parent's state.
type State interface {
	// Add accumulates a leaf value. v is nil when the row has no such field.
	Add(v *structpb.Value)
	// Combine merges another state of the same kind into this one.
	Combine(other State)
	// Value returns the aggregated value.
	Value() *structpb.Value
}

type numericResult int

const (
	resultSum numericResult = iota
	resultAvg
	resultMin
	resultMax
)

// NumericState accumulates numbers. Min and max also accept dates, given as
// RFC 3339 or YYYY-MM-DD strings, and return the original extreme value.
type NumericState struct {
	Count int64   // Number of accepted values
	Sum   float64 // Sum of numeric values
	Min   float64 // Smallest key seen
	Max   float64 // Largest key seen

	minValue *structpb.Value
	maxValue *structpb.Value
	result   numericResult
}

func newNumericState(result numericResult) State {
	return &NumericState{result: result}
}

// Add adds a single value to the state. Values of other kinds are ignored.
func (s *NumericState) Add(v *structpb.Value) {
	key, ok := s.key(v)
	if !ok {
		return
	}
	if s.Count == 0 || key < s.Min {
		s.Min, s.minValue = key, v
	}
	if s.Count == 0 || key > s.Max {
		s.Max, s.maxValue = key, v
	}
	s.Count++
	s.Sum += key
}

func (s *NumericState) key(v *structpb.Value) (float64, bool) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, true
	case *structpb.Value_StringValue:
		if s.result != resultMin && s.result != resultMax {
			return 0, false
		}
		t, err := columns.ParseDate(k.StringValue)
		if err != nil {
			return 0, false
		}
		return float64(t.UnixMilli()), true
	default:
		return 0, false
	}
}

// Combine merges another numeric state into this one.
func (s *NumericState) Combine(other State) {
	o, ok := other.(*NumericState)
	if !ok || o.Count == 0 {
		return
	}
	if s.Count == 0 || o.Min < s.Min {
		s.Min, s.minValue = o.Min, o.minValue
	}
	if s.Count == 0 || o.Max > s.Max {
		s.Max, s.maxValue = o.Max, o.maxValue
	}
	s.Count += o.Count
	s.Sum += o.Sum
}

// Avg returns the mean of the values.
func (s *NumericState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Value returns the aggregate. Sum of nothing is 0, the others are null.
func (s *NumericState) Value() *structpb.Value {
	switch s.result {
	case resultSum:
		return structpb.NewNumberValue(s.Sum)
	case resultAvg:
		if s.Count == 0 {
			return structpb.NewNullValue()
		}
		return structpb.NewNumberValue(s.Avg())
	case resultMin:
		if s.minValue == nil {
			return structpb.NewNullValue()
		}
		return s.minValue
	default:
		if s.maxValue == nil {
			return structpb.NewNullValue()
		}
		return s.maxValue
	}
}

// CountState counts rows, whatever their value.
type CountState struct {
	Count int64
}

// Add counts one row.
func (s *CountState) Add(*structpb.Value) {
	s.Count++
}

// Combine merges another count state into this one.
func (s *CountState) Combine(other State) {
	if o, ok := other.(*CountState); ok {
		s.Count += o.Count
	}
}

// Value returns the row count.
func (s *CountState) Value() *structpb.Value {
	return structpb.NewNumberValue(float64(s.Count))
}

var (
	numberTypes = []columns.ColumnType{columns.TypeNumber}
	rangeTypes  = []columns.ColumnType{columns.TypeNumber, columns.TypeDate, columns.TypeDateTime}
)

// Built-in functions. They are shared by every registry created with
// Builtins, so rules built from different registries compare equal.
var (
	Sum = &Function{
		ColumnTypes: numberTypes,
		NewState:    func() State { return newNumericState(resultSum) },
	}
	Avg = &Function{
		ColumnTypes: numberTypes,
		NewState:    func() State { return newNumericState(resultAvg) },
	}
	Min = &Function{
		ColumnTypes: rangeTypes,
		NewState:    func() State { return newNumericState(resultMin) },
	}
	Max = &Function{
		ColumnTypes: rangeTypes,
		NewState:    func() State { return newNumericState(resultMax) },
	}
	Size = &Function{
		NewState: func() State { return &CountState{} },
	}
)

// Builtins returns a registry holding sum, avg, min, max and size.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("sum", Sum)
	r.Register("avg", Avg)
	r.Register("min", Min)
	r.Register("max", Max)
	r.Register("size", Size)
	return r
}
