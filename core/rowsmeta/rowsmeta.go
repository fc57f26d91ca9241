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

// Package rowsmeta computes row heights and scroll positions for the visible
// rows of a grid.
//
// Every row has a set of named height slots. Slots whose name matches
// "base[A-Z]..." are base slots: they describe competing content regions and
// the largest one wins. All other slots (spacing, decorations) are added on
// top. A hydration pass recomputes the slots of every visible and pinned row,
// then the prefix sums of the visible rows' heights.
package rowsmeta

import (
	"math"

	"github.com/google/gridcore/core/rows"
)

// DefaultRowHeight is the uniform row height at standard density.
const DefaultRowHeight = 52

// BaseCenterSlot holds the main height of a row.
const BaseCenterSlot = "baseCenter"

// IsBaseSlot reports whether slot is a base slot.
func IsBaseSlot(slot string) bool {
	return len(slot) > 4 && slot[:4] == "base" && slot[4] >= 'A' && slot[4] <= 'Z'
}

// RowHeight is the answer of a height callback: a fixed height, the auto
// sentinel, or the zero value for "use the uniform height".
type RowHeight struct {
	height float64
	auto   bool
	set    bool
}

// Height returns a fixed row height.
func Height(h float64) RowHeight {
	return RowHeight{height: h, set: true}
}

// AutoHeight returns the sentinel for rows sized by measurement.
func AutoHeight() RowHeight {
	return RowHeight{auto: true}
}

// IsAuto reports whether h is the auto sentinel.
func (h RowHeight) IsAuto() bool {
	return h.auto
}

// Value returns the fixed height, or false when h is auto, unset or not a
// usable height.
func (h RowHeight) Value() (float64, bool) {
	if !h.set || !usable(h.height) {
		return 0, false
	}
	return h.height, true
}

func usable(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0
}

// RowHeightParams is passed to the height and estimation callbacks.
type RowHeightParams struct {
	rows.RowEntry
	DensityFactor float64
}

// RowSpacingParams is passed to the spacing callback.
type RowSpacingParams struct {
	rows.RowEntry
	IsFirstVisible             bool
	IsLastVisible              bool
	IndexRelativeToCurrentPage int
}

// RowSpacing is extra space above and below a row.
type RowSpacing struct {
	Top    float64
	Bottom float64
}

// record is the cached height state of one row.
type record struct {
	sizes                 map[string]float64
	isResized             bool
	autoHeight            bool
	needsFirstMeasurement bool
	// effective is the height computed by the last hydration pass.
	effective float64
	hydrated  bool
}

func newRecord(rowHeight float64) *record {
	return &record{
		sizes:                 map[string]float64{BaseCenterSlot: rowHeight},
		needsFirstMeasurement: true,
	}
}
