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

// Package daterange decides how a date range changes when the user picks a
// date for one of its ends.
package daterange

import "time"

// Position is the end of the range being edited.
type Position string

const (
	Start Position = "start"
	End   Position = "end"
)

// Range is a date range. A nil end is unset.
type Range[T any] struct {
	Start *T
	End   *T
}

// Comparer orders dates of type T.
type Comparer[T any] interface {
	IsAfter(a, b T) bool
	IsBefore(a, b T) bool
}

// TimeComparer compares time.Time values.
type TimeComparer struct{}

func (TimeComparer) IsAfter(a, b time.Time) bool  { return a.After(b) }
func (TimeComparer) IsBefore(a, b time.Time) bool { return a.Before(b) }

// Options describes one pick.
type Options[T any] struct {
	Comparer Comparer[T]
	Range    Range[T]
	NewDate  *T
	Position Position
	// AllowRangeFlip lets a pick past the other end swap the ends instead of
	// starting a new range.
	AllowRangeFlip bool
}

// Change is the outcome of a pick: the new range and the end to edit next.
type Change[T any] struct {
	NextSelection Position
	NewRange      Range[T]
}

// CalculateRangeChange applies a pick to the range.
func CalculateRangeChange[T any](opts Options[T]) Change[T] {
	start, end := opts.Range.Start, opts.Range.End
	picked := opts.NewDate

	if opts.Position == Start {
		if end != nil && picked != nil && opts.Comparer.IsAfter(*picked, *end) {
			if opts.AllowRangeFlip {
				return Change[T]{NextSelection: Start, NewRange: Range[T]{Start: end, End: picked}}
			}
			return Change[T]{NextSelection: End, NewRange: Range[T]{Start: picked}}
		}
		return Change[T]{NextSelection: End, NewRange: Range[T]{Start: picked, End: end}}
	}

	if start != nil && picked != nil && opts.Comparer.IsBefore(*picked, *start) {
		if opts.AllowRangeFlip {
			return Change[T]{NextSelection: End, NewRange: Range[T]{Start: picked, End: start}}
		}
		return Change[T]{NextSelection: End, NewRange: Range[T]{Start: picked}}
	}
	return Change[T]{NextSelection: Start, NewRange: Range[T]{Start: start, End: picked}}
}

// CalculateRangePreview returns the range to highlight while hovering
// NewDate. With both ends set it spans from the edited end to the hovered date.
func CalculateRangePreview[T any](opts Options[T]) Range[T] {
	if opts.NewDate == nil {
		return Range[T]{}
	}
	start, end := opts.Range.Start, opts.Range.End
	next := CalculateRangeChange(opts).NewRange
	if start == nil || end == nil {
		return next
	}
	if opts.Position == End {
		return Range[T]{Start: end, End: next.End}
	}
	return Range[T]{Start: next.Start, End: start}
}
