// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrackerCoalescesBurst(t *testing.T) {
	var fired atomic.Int32
	var mu sync.Mutex
	var markAt time.Time

	tr := NewTracker(SystemClock(), 30*time.Millisecond, func(at time.Time) {
		fired.Add(1)
		mu.Lock()
		markAt = at
		mu.Unlock()
	})
	tr.Enable()

	for i := 0; i < 10; i++ {
		tr.Touch()
		time.Sleep(5 * time.Millisecond)
	}
	last := tr.LastTouch()

	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Fatalf("callback fired %d times for one burst, want 1", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if !markAt.Equal(last) {
		t.Errorf("mark carried %v, want last touch %v", markAt, last)
	}
}

func TestTrackerSeparateBurstsFireSeparately(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(SystemClock(), 20*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	tr.Enable()

	tr.Touch()
	time.Sleep(60 * time.Millisecond)
	tr.Touch()
	time.Sleep(60 * time.Millisecond)

	if got := fired.Load(); got != 2 {
		t.Errorf("callback fired %d times for two bursts, want 2", got)
	}
}

func TestTrackerDisableCancelsPending(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(SystemClock(), 30*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	tr.Enable()

	tr.Touch()
	tr.Disable()
	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("callback fired %d times after Disable, want 0", got)
	}
}

func TestTrackerDisabledIgnoresTouch(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(SystemClock(), 10*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})

	tr.Touch() // never enabled
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("disabled tracker fired %d times, want 0", got)
	}
	if !tr.LastTouch().IsZero() {
		t.Error("disabled tracker recorded a touch")
	}
}

func TestTrackerConcurrentTouch(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(SystemClock(), 20*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	tr.Enable()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Touch()
			}
		}()
	}
	wg.Wait()
	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times for one concurrent burst, want 1", got)
	}
}
