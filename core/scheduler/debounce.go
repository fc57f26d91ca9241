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

package scheduler

import "time"

// DefaultDebounceWait is the trailing delay used for measurement-driven
// re-hydration.
const DefaultDebounceWait = 166 * time.Millisecond

// Debouncer coalesces bursts of calls: only the last call of a burst runs,
// wait after it was made.
type Debouncer struct {
	sched  Scheduler
	wait   time.Duration
	fn     func()
	cancel Cancel
	gen    int
}

// NewDebouncer creates a trailing-edge debouncer for fn.
func NewDebouncer(sched Scheduler, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{sched: sched, wait: wait, fn: fn}
}

// Call schedules fn, superseding any pending call.
func (d *Debouncer) Call() {
	d.Clear()
	d.gen++
	gen := d.gen
	ran := false
	cancel := d.sched.Schedule(d.wait, func() {
		if gen != d.gen {
			return
		}
		ran = true
		d.cancel = nil
		d.fn()
	})
	// Synchronous schedulers have already run the task.
	if !ran && gen == d.gen {
		d.cancel = cancel
	}
}

// Clear drops the pending call, if any.
func (d *Debouncer) Clear() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	return d.cancel != nil
}
