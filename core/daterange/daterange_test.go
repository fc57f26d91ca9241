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

package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) *time.Time {
	t := time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func days(r Range[time.Time]) [2]int {
	out := [2]int{}
	if r.Start != nil {
		out[0] = r.Start.Day()
	}
	if r.End != nil {
		out[1] = r.End.Day()
	}
	return out
}

func TestCalculateRangeChange(t *testing.T) {
	tests := []struct {
		name      string
		rng       Range[time.Time]
		newDate   *time.Time
		position  Position
		flip      bool
		wantNext  Position
		wantRange [2]int // day of month, 0 for unset
	}{
		{"start on empty range", Range[time.Time]{}, day(10), Start, false, End, [2]int{10, 0}},
		{"start before end", Range[time.Time]{Start: day(5), End: day(20)}, day(10), Start, false, End, [2]int{10, 20}},
		{"start after end restarts", Range[time.Time]{Start: day(5), End: day(20)}, day(25), Start, false, End, [2]int{25, 0}},
		{"start after end flips", Range[time.Time]{Start: day(5), End: day(20)}, day(25), Start, true, Start, [2]int{20, 25}},
		{"end after start", Range[time.Time]{Start: day(5)}, day(10), End, false, Start, [2]int{5, 10}},
		{"end on empty range", Range[time.Time]{}, day(10), End, false, Start, [2]int{0, 10}},
		{"end before start restarts", Range[time.Time]{Start: day(5), End: day(20)}, day(2), End, false, End, [2]int{2, 0}},
		{"end before start flips", Range[time.Time]{Start: day(5), End: day(20)}, day(2), End, true, End, [2]int{2, 5}},
		{"clearing start", Range[time.Time]{Start: day(5), End: day(20)}, nil, Start, false, End, [2]int{0, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRangeChange(Options[time.Time]{
				Comparer:       TimeComparer{},
				Range:          tt.rng,
				NewDate:        tt.newDate,
				Position:       tt.position,
				AllowRangeFlip: tt.flip,
			})
			assert.Equal(t, tt.wantNext, got.NextSelection)
			assert.Equal(t, tt.wantRange, days(got.NewRange))
		})
	}
}

func TestCalculateRangePreview(t *testing.T) {
	full := Range[time.Time]{Start: day(5), End: day(20)}
	preview := func(rng Range[time.Time], newDate *time.Time, position Position) [2]int {
		return days(CalculateRangePreview(Options[time.Time]{
			Comparer: TimeComparer{},
			Range:    rng,
			NewDate:  newDate,
			Position: position,
		}))
	}

	assert.Equal(t, [2]int{0, 0}, preview(full, nil, Start))
	assert.Equal(t, [2]int{10, 0}, preview(Range[time.Time]{}, day(10), Start))
	assert.Equal(t, [2]int{20, 25}, preview(full, day(25), End))
	assert.Equal(t, [2]int{2, 5}, preview(full, day(2), Start))
}
