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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualRunsTasksInDueOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.Schedule(30*time.Millisecond, func() { order = append(order, "c") })
	m.Schedule(10*time.Millisecond, func() { order = append(order, "a") })
	m.Schedule(10*time.Millisecond, func() { order = append(order, "b") })

	assert.Equal(t, 0, m.Advance(5*time.Millisecond))
	assert.Equal(t, 2, m.Advance(5*time.Millisecond))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, m.Flush())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	ran := false
	cancel := m.Schedule(time.Millisecond, func() { ran = true })
	cancel()

	assert.Equal(t, 0, m.Pending())
	m.Flush()
	assert.False(t, ran)
}

func TestManualTaskCanScheduleMore(t *testing.T) {
	m := NewManual()
	count := 0
	m.Schedule(time.Millisecond, func() {
		count++
		m.Schedule(time.Millisecond, func() { count++ })
	})
	assert.Equal(t, 2, m.Flush())
	assert.Equal(t, 2, count)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	m := NewManual()
	calls := 0
	d := NewDebouncer(m, DefaultDebounceWait, func() { calls++ })

	for i := 0; i < 50; i++ {
		d.Call()
		m.Advance(10 * time.Millisecond)
	}
	assert.True(t, d.Pending())
	assert.Equal(t, 0, calls)

	m.Advance(DefaultDebounceWait)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	m.Flush()
	assert.Equal(t, 1, calls)
}

func TestDebouncerClear(t *testing.T) {
	m := NewManual()
	calls := 0
	d := NewDebouncer(m, time.Millisecond, func() { calls++ })
	d.Call()
	d.Clear()
	m.Flush()
	assert.Equal(t, 0, calls)
	assert.False(t, d.Pending())
}

func TestLoopRunsScheduledTasks(t *testing.T) {
	l := NewLoop(4)
	done := make(chan struct{})
	l.Schedule(time.Millisecond, func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		<-done
		cancel()
	}()
	err := l.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopCancelledTaskDoesNotRun(t *testing.T) {
	l := NewLoop(4)
	ran := false
	cancel := l.Schedule(time.Hour, func() { ran = true })
	cancel()

	l.Post(func() {})
	assert.Equal(t, 1, l.RunPending())
	assert.False(t, ran)
}

func TestStoppedLoopDropsTasks(t *testing.T) {
	l := NewLoop(1)
	l.Post(func() {})

	returned := make(chan struct{})
	go func() {
		l.Post(func() {})
		close(returned)
	}()
	l.Stop()
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("Post blocked on a stopped loop")
	}
	assert.Len(t, l.tasks, 1, "only the task posted before Stop is queued")
}

func TestRunStopsLoopOnExit(t *testing.T) {
	l := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, l.Run(ctx), context.Canceled)

	l.Post(func() {})
	l.Post(func() {})
	assert.Empty(t, l.tasks)
}

func TestDebouncerWithImmediateScheduler(t *testing.T) {
	calls := 0
	d := NewDebouncer(Immediate{}, DefaultDebounceWait, func() { calls++ })
	d.Call()
	d.Call()
	assert.Equal(t, 2, calls)
	assert.False(t, d.Pending())
}
