// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// DefaultDebounce is how long a burst of activity signals must settle before
// a single activity mark is emitted.
const DefaultDebounce = 300 * time.Millisecond

// Tracker coalesces raw activity signals into debounced activity marks.
//
// A burst of Touch calls produces exactly one onActivity callback, fired
// once the burst has been quiet for the debounce delay. The mark carries the
// time of the last signal in the burst, not the fire time.
type Tracker struct {
	mu         sync.Mutex
	clock      Clock
	delay      time.Duration
	onActivity func(time.Time)

	timer     *time.Timer
	lastTouch time.Time
	enabled   bool
}

// NewTracker creates a tracker. It starts disabled; Enable arms it.
func NewTracker(clock Clock, delay time.Duration, onActivity func(time.Time)) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Tracker{
		clock:      clock,
		delay:      delay,
		onActivity: onActivity,
	}
}

// Enable starts accepting activity signals.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}

// Disable stops accepting signals and cancels any pending mark.
// No callback fires after Disable returns observable effect: a timer that
// already fired and is waiting on the lock sees enabled=false and drops out.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Touch records one raw activity signal.
// Safe for concurrent use; each call restarts the debounce window.
func (t *Tracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return
	}
	t.lastTouch = t.clock.Now()

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.fire)
	} else {
		t.timer.Reset(t.delay)
	}
}

// fire delivers the settled activity mark.
func (t *Tracker) fire() {
	t.mu.Lock()
	t.timer = nil
	enabled := t.enabled
	at := t.lastTouch
	fn := t.onActivity
	t.mu.Unlock()

	if enabled && fn != nil {
		fn(at)
	}
}

// LastTouch returns the time of the most recent signal, settled or not.
func (t *Tracker) LastTouch() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTouch
}
