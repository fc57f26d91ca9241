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

package rowsmeta

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/core/locale"
	"github.com/google/gridcore/core/pipes"
	"github.com/google/gridcore/core/rows"
	"github.com/google/gridcore/core/scheduler"
)

// ApplierID is the id the engine registers under on the rowHeight pipeline.
const ApplierID = "rowsMeta"

// Options configures an Engine. Callbacks and providers may be nil.
type Options struct {
	// RowHeight is the uniform row height at standard density. Zero means
	// DefaultRowHeight.
	RowHeight int
	Density   gridstate.Density

	GetRowHeight          func(RowHeightParams) RowHeight
	GetEstimatedRowHeight func(RowHeightParams) (float64, bool)
	GetRowSpacing         func(RowSpacingParams) RowSpacing

	// VisibleRows returns the current page, already filtered and sorted.
	VisibleRows func() []rows.RowEntry
	PinnedRows  func() rows.PinnedRows
	// HasRow reports whether a row is still part of the dataset. Records of
	// rows a pass did not reach are dropped unless HasRow keeps them. nil keeps
	// only the rows the pass reached.
	HasRow      func(id rows.RowID) bool

	// Pipes supplies the rowHeight pipeline. The engine re-hydrates whenever
	// its processors change.
	Pipes *pipes.Registry
	// Store receives the committed RowsMeta.
	Store *gridstate.Store
	// Scheduler runs debounced passes. nil runs them synchronously.
	Scheduler    scheduler.Scheduler
	DebounceWait time.Duration
	Logger       *slog.Logger
}

// Engine owns the row height cache of one grid.
// It is not safe for concurrent use.
type Engine struct {
	opts   Options
	logger *slog.Logger

	lookup               map[rows.RowID]*record
	lastMeasuredRowIndex int
	hasRowWithAutoHeight bool
	meta                 gridstate.RowsMeta

	debounced     *scheduler.Debouncer
	removeApplier func()
}

// New creates an engine. Call Hydrate to compute the first positions.
func New(opts Options) *Engine {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.Density == "" {
		opts.Density = gridstate.DensityStandard
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.Immediate{}
	}
	if opts.DebounceWait <= 0 {
		opts.DebounceWait = scheduler.DefaultDebounceWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		opts:                 opts,
		logger:               logger.With("component", "rowsmeta"),
		lookup:               make(map[rows.RowID]*record),
		lastMeasuredRowIndex: -1,
	}
	e.debounced = scheduler.NewDebouncer(opts.Scheduler, opts.DebounceWait, e.Hydrate)
	if opts.Pipes != nil {
		e.removeApplier = opts.Pipes.RegisterApplier(pipes.RowHeight, ApplierID, e.Hydrate)
	}
	return e
}

// Close drops the pending debounced pass and detaches from the pipeline.
func (e *Engine) Close() {
	e.debounced.Clear()
	if e.removeApplier != nil {
		e.removeApplier()
		e.removeApplier = nil
	}
}

// UniformRowHeight returns the row height scaled by the density.
func (e *Engine) UniformRowHeight() float64 {
	return math.Floor(float64(e.opts.RowHeight) * e.opts.Density.Factor())
}

// SetUniformRowHeight changes the base row height and re-hydrates.
func (e *Engine) SetUniformRowHeight(h int) {
	if h <= 0 {
		h = DefaultRowHeight
	}
	e.opts.RowHeight = h
	e.Hydrate()
}

// SetDensity changes the density and re-hydrates.
func (e *Engine) SetDensity(d gridstate.Density) {
	e.StageDensity(d)
	e.Hydrate()
}

// StageDensity changes the density used by the next pass without running one.
func (e *Engine) StageDensity(d gridstate.Density) {
	if d == "" {
		d = gridstate.DensityStandard
	}
	e.opts.Density = d
}

// Hydrate recomputes the heights of the visible and pinned rows and commits
// the positions of the visible ones.
func (e *Engine) Hydrate() {
	e.hasRowWithAutoHeight = false
	rowHeight := e.UniformRowHeight()

	var visible []rows.RowEntry
	if e.opts.VisibleRows != nil {
		visible = e.opts.VisibleRows()
	}
	index := make(map[rows.RowID]int, len(visible))
	for i, row := range visible {
		if _, seen := index[row.ID]; !seen {
			index[row.ID] = i
		}
	}

	reached := make(map[rows.RowID]bool, len(visible))
	positions := make([]float64, 0, len(visible))
	total := 0.0
	for _, row := range visible {
		positions = append(positions, total)
		total += e.processRow(row, rowHeight, index, len(visible))
		reached[row.ID] = true
	}

	if e.opts.PinnedRows != nil {
		for _, row := range e.opts.PinnedRows().All() {
			e.processRow(row, rowHeight, index, len(visible))
			reached[row.ID] = true
		}
	}
	e.prune(reached)

	e.meta = gridstate.RowsMeta{Positions: positions, CurrentPageTotalHeight: total}
	if e.opts.Store != nil {
		e.opts.Store.SetRowsMeta(e.meta)
		e.opts.Store.Publish(gridstate.RowsMetaChange, e.meta)
	}

	if !e.hasRowWithAutoHeight {
		e.lastMeasuredRowIndex = math.MaxInt
	}
	e.logger.Debug("rows meta hydrated",
		"rows", len(visible),
		"total_height", total,
		"auto_height", e.hasRowWithAutoHeight)
}

// prune drops the records of rows that left the dataset.
func (e *Engine) prune(reached map[rows.RowID]bool) {
	maps.DeleteFunc(e.lookup, func(id rows.RowID, _ *record) bool {
		if reached[id] {
			return false
		}
		return e.opts.HasRow == nil || !e.opts.HasRow(id)
	})
}

func (e *Engine) processRow(row rows.RowEntry, rowHeight float64, index map[rows.RowID]int, visibleCount int) float64 {
	rec, ok := e.lookup[row.ID]
	if !ok {
		rec = newRecord(rowHeight)
		e.lookup[row.ID] = rec
	}

	params := RowHeightParams{RowEntry: row, DensityFactor: e.opts.Density.Factor()}
	baseRowHeight := rowHeight
	existingBaseRowHeight := rec.sizes[BaseCenterSlot]

	switch {
	case rec.isResized:
		baseRowHeight = existingBaseRowHeight
	case e.opts.GetRowHeight != nil:
		h := e.opts.GetRowHeight(params)
		if h.IsAuto() {
			if rec.needsFirstMeasurement {
				if e.opts.GetEstimatedRowHeight != nil {
					if estimate, ok := e.opts.GetEstimatedRowHeight(params); ok && usable(estimate) {
						baseRowHeight = estimate
					}
				}
			} else {
				baseRowHeight = existingBaseRowHeight
			}
			e.hasRowWithAutoHeight = true
			rec.autoHeight = true
		} else {
			if v, ok := h.Value(); ok {
				baseRowHeight = v
			}
			rec.needsFirstMeasurement = false
			rec.autoHeight = false
		}
	default:
		rec.needsFirstMeasurement = false
	}

	initial := make(map[string]float64, len(rec.sizes)+2)
	for slot, size := range rec.sizes {
		if IsBaseSlot(slot) {
			initial[slot] = size
		}
	}
	initial[BaseCenterSlot] = baseRowHeight

	if e.opts.GetRowSpacing != nil {
		i, ok := index[row.ID]
		if !ok {
			i = -1
		}
		spacing := e.opts.GetRowSpacing(RowSpacingParams{
			RowEntry:                   row,
			IsFirstVisible:             i == 0,
			IsLastVisible:              i >= 0 && i == visibleCount-1,
			IndexRelativeToCurrentPage: i,
		})
		initial["spacingTop"] = spacing.Top
		initial["spacingBottom"] = spacing.Bottom
	}

	processed := initial
	if e.opts.Pipes != nil {
		if out := pipes.ApplyFunc(e.opts.Pipes, pipes.RowHeight, initial, row); out != nil {
			processed = out
		}
	}
	rec.sizes = processed
	rec.effective = effectiveHeight(processed)
	rec.hydrated = true
	return rec.effective
}

// effectiveHeight is the largest base slot plus every other slot.
func effectiveHeight(sizes map[string]float64) float64 {
	maxBase, others := 0.0, 0.0
	for _, slot := range slices.Sorted(maps.Keys(sizes)) {
		size := sizes[slot]
		if IsBaseSlot(slot) {
			maxBase = max(maxBase, size)
		} else {
			others += size
		}
	}
	return maxBase + others
}

// RowHeight returns the effective height of a row as of the last hydration
// pass, or the uniform height for rows never hydrated.
func (e *Engine) RowHeight(id rows.RowID) float64 {
	if rec, ok := e.lookup[id]; ok && rec.hydrated {
		return rec.effective
	}
	return e.UniformRowHeight()
}

// BaseRowHeight returns the baseCenter slot of a row, or the uniform height.
func (e *Engine) BaseRowHeight(id rows.RowID) float64 {
	if rec, ok := e.lookup[id]; ok {
		return rec.sizes[BaseCenterSlot]
	}
	return e.UniformRowHeight()
}

// RowInternalSizes returns a copy of the slot map of a row.
func (e *Engine) RowInternalSizes(id rows.RowID) (map[string]float64, bool) {
	rec, ok := e.lookup[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(rec.sizes), true
}

// RowHasAutoHeight reports whether the row is sized by measurement.
func (e *Engine) RowHasAutoHeight(id rows.RowID) bool {
	rec, ok := e.lookup[id]
	return ok && rec.autoHeight
}

// Meta returns the committed output of the last hydration pass.
func (e *Engine) Meta() gridstate.RowsMeta {
	return gridstate.RowsMeta{
		Positions:              slices.Clone(e.meta.Positions),
		CurrentPageTotalHeight: e.meta.CurrentPageTotalHeight,
	}
}

// Positions returns the top offsets of the visible rows.
func (e *Engine) Positions() []float64 {
	return slices.Clone(e.meta.Positions)
}

// CurrentPageTotalHeight returns the height of all visible rows.
func (e *Engine) CurrentPageTotalHeight() float64 {
	return e.meta.CurrentPageTotalHeight
}

// LastMeasuredRowIndex returns how far the virtualizer has measured auto-height
// rows. It is math.MaxInt once no row needs measuring.
func (e *Engine) LastMeasuredRowIndex() int {
	return e.lastMeasuredRowIndex
}

// SetLastMeasuredRowIndex advances the measured index. It never moves back and
// is ignored while no row has an auto height.
func (e *Engine) SetLastMeasuredRowIndex(index int) {
	if e.hasRowWithAutoHeight && index > e.lastMeasuredRowIndex {
		e.lastMeasuredRowIndex = index
	}
}

// SetRowHeight pins the base height of a row and re-hydrates. The height is
// kept across passes until ResetRowHeights or until the row leaves the dataset.
func (e *Engine) SetRowHeight(id rows.RowID, height float64) {
	rec, ok := e.lookup[id]
	if !ok {
		rec = newRecord(e.UniformRowHeight())
		e.lookup[id] = rec
	}
	rec.sizes[BaseCenterSlot] = height
	rec.isResized = true
	rec.needsFirstMeasurement = false
	e.Hydrate()
}

// StoreRowHeightMeasurement records a measured height for the slot
// "base"+position of an auto-height row. A changed value schedules a
// debounced re-hydration. Measurements of other rows are ignored.
func (e *Engine) StoreRowHeightMeasurement(id rows.RowID, height float64, position string) {
	rec, ok := e.lookup[id]
	if !ok || !rec.autoHeight {
		return
	}
	slot := "base" + locale.Capitalize(position)
	old, had := rec.sizes[slot]
	needsHydration := !had || old != height

	rec.needsFirstMeasurement = false
	rec.sizes[slot] = height

	if needsHydration {
		e.debounced.Call()
	}
}

// ResetRowHeights drops every cached height and re-hydrates.
func (e *Engine) ResetRowHeights() {
	e.lookup = make(map[rows.RowID]*record)
	e.Hydrate()
}
