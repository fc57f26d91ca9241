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
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// CompareValues compares two cell values of a column of type colType.
// Returns -1 if a < b, 0 if equal, 1 if a > b. Missing and null values sort
// after every other value.
func CompareValues(colType ColumnType, a, b *structpb.Value) int {
	aMissing, bMissing := isMissing(a), isMissing(b)
	if aMissing || bMissing {
		return compareMissing(aMissing, bMissing)
	}

	switch colType {
	case TypeNumber:
		if af, ok := a.GetKind().(*structpb.Value_NumberValue); ok {
			if bf, ok := b.GetKind().(*structpb.Value_NumberValue); ok {
				return compareFloat64s(af.NumberValue, bf.NumberValue)
			}
		}
	case TypeDate, TypeDateTime:
		at, errA := ParseDate(a.GetStringValue())
		bt, errB := ParseDate(b.GetStringValue())
		if errA != nil || errB != nil {
			return compareErrors(errA, errB)
		}
		return compareTimes(at, bt)
	case TypeBoolean:
		if _, ok := a.GetKind().(*structpb.Value_BoolValue); ok {
			return compareBools(a.GetBoolValue(), b.GetBoolValue())
		}
	}
	return strings.Compare(valueString(a), valueString(b))
}

// CompareKeys compares two grouping keys, numerically when both are numbers.
func CompareKeys(a, b string) int {
	af, errA := strconv.ParseFloat(a, 64)
	bf, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return compareFloat64s(af, bf)
	}
	return strings.Compare(a, b)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// ParseDate parses the date formats accepted in date and dateTime cells.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func isMissing(v *structpb.Value) bool {
	if v == nil {
		return true
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null || v.GetKind() == nil
}

func compareMissing(aMissing, bMissing bool) int {
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	default:
		return -1
	}
}

func valueString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// compareTimes compares two time.Time values
func compareTimes(a, b time.Time) int {
	return a.Compare(b)
}

// compareBools compares two bool values (false < true)
func compareBools(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareErrors orders unparsable values after valid ones.
func compareErrors(errA, errB error) int {
	return compareMissing(errA != nil, errB != nil)
}
