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

// Package scheduler provides the cooperative scheduling boundary of a grid:
// deferred work runs on the host's single logical thread, one task at a time.
// Debouncer builds trailing-edge coalescing on top of it.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Cancel withdraws a scheduled task. Calling it after the task ran is a no-op.
type Cancel func()

// Scheduler defers tasks to a later turn of the host's loop.
type Scheduler interface {
	Schedule(delay time.Duration, task func()) Cancel
}

// Loop is a Scheduler backed by real timers. Timers only enqueue; tasks run
// inside Run, on the caller's goroutine, so grid state is never touched from
// timer goroutines.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop whose queue holds up to buffer tasks before Post blocks.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{tasks: make(chan func(), buffer), done: make(chan struct{})}
}

// Post enqueues task for the next turn. Once the loop is stopped the task is
// dropped and Post never blocks.
func (l *Loop) Post(task func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- task:
	case <-l.done:
	}
}

// Stop ends the loop: Run returns and later tasks are dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Schedule enqueues task after delay.
func (l *Loop) Schedule(delay time.Duration, task func()) Cancel {
	var mu sync.Mutex
	cancelled := false
	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			mu.Lock()
			skip := cancelled
			mu.Unlock()
			if !skip {
				task()
			}
		})
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		timer.Stop()
	}
}

// Run executes queued tasks until ctx is done or Stop is called, then stops
// the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case task := <-l.tasks:
			task()
		}
	}
}

// RunPending executes the tasks queued so far without blocking.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case task := <-l.tasks:
			task()
			n++
		default:
			return n
		}
	}
}

// Immediate runs every task synchronously, ignoring the delay.
type Immediate struct{}

// Schedule runs task before returning.
func (Immediate) Schedule(_ time.Duration, task func()) Cancel {
	task()
	return func() {}
}

// Manual is a deterministic Scheduler driven by a virtual clock. It is used by
// tests and by one-shot tools that want to drain deferred work explicitly.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual creates a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule queues task to run once the virtual clock passes delay.
func (m *Manual) Schedule(delay time.Duration, task func()) Cancel {
	m.seq++
	t := &manualTask{due: m.now + delay, seq: m.seq, fn: task}
	m.tasks = append(m.tasks, t)
	return func() { t.cancelled = true }
}

// Pending returns the number of queued tasks that have not been cancelled.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and runs every task that became due,
// in due order.
func (m *Manual) Advance(d time.Duration) int {
	m.now += d
	return m.runUntil(m.now)
}

// Flush runs every queued task regardless of its due time.
func (m *Manual) Flush() int {
	ran := 0
	for len(m.tasks) > 0 {
		latest := m.now
		for _, t := range m.tasks {
			if t.due > latest {
				latest = t.due
			}
		}
		m.now = latest
		ran += m.runUntil(latest)
	}
	return ran
}

func (m *Manual) runUntil(limit time.Duration) int {
	ran := 0
	for {
		sort.SliceStable(m.tasks, func(i, j int) bool {
			if m.tasks[i].due != m.tasks[j].due {
				return m.tasks[i].due < m.tasks[j].due
			}
			return m.tasks[i].seq < m.tasks[j].seq
		})
		if len(m.tasks) == 0 || m.tasks[0].due > limit {
			return ran
		}
		t := m.tasks[0]
		m.tasks = m.tasks[1:]
		if t.cancelled {
			continue
		}
		t.fn()
		ran++
	}
}
