// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const (
	testTimeout  = 30 * time.Minute
	testWarnLead = 5 * time.Minute
	testValidate = 5 * time.Minute
)

func newTestMonitor(clock Clock) *Monitor {
	return NewMonitor(clock, testTimeout, testWarnLead, testValidate)
}

func TestMonitorActiveBeforeWarningZone(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	clock.Advance(24*time.Minute + 59*time.Second)
	res := m.Check()
	if res.State != StateActive {
		t.Errorf("State = %v just before warning threshold, want active", res.State)
	}
	if res.WarningEntered || res.Expired {
		t.Errorf("unexpected edges: %+v", res)
	}
}

func TestMonitorWarningBoundaryInclusive(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	// elapsed == T-W is inside the warning zone.
	clock.Advance(25 * time.Minute)
	res := m.Check()
	if res.State != StateWarning {
		t.Errorf("State = %v at exactly T-W, want warning", res.State)
	}
	if !res.WarningEntered {
		t.Error("WarningEntered should fire on first check in zone")
	}
	if res.Remaining != 5*time.Minute {
		t.Errorf("Remaining = %v, want 5m", res.Remaining)
	}
}

func TestMonitorWarningFiresOncePerEntry(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	clock.Advance(26 * time.Minute)
	if res := m.Check(); !res.WarningEntered {
		t.Fatal("first check should report the warning edge")
	}

	clock.Advance(time.Minute)
	if res := m.Check(); res.WarningEntered {
		t.Error("second check in the same zone re-reported the edge")
	}

	// Activity clears the latch; re-entering the zone warns again.
	m.ActivityUpdated(clock.Now())
	if res := m.Check(); res.State != StateActive {
		t.Fatalf("State = %v after activity, want active", res.State)
	}
	clock.Advance(26 * time.Minute)
	if res := m.Check(); !res.WarningEntered {
		t.Error("re-entering the warning zone should warn again")
	}
}

func TestMonitorExpiryBoundaryAndSingleFire(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	clock.Advance(testTimeout)
	res := m.Check()
	if res.State != StateExpired {
		t.Errorf("State = %v at exactly T, want expired", res.State)
	}
	if !res.Expired {
		t.Error("first expired check should report the edge")
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", res.Remaining)
	}

	// Later ticks against the expired session never re-fire.
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		if res := m.Check(); res.Expired {
			t.Fatal("expiry edge fired more than once")
		}
	}
}

func TestMonitorActivityResetsCountdown(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	clock.Advance(27 * time.Minute)
	m.Check()
	m.ActivityUpdated(clock.Now())

	clock.Advance(29 * time.Minute)
	if res := m.Check(); res.State == StateExpired {
		t.Error("activity did not reset the countdown")
	}
}

func TestMonitorActivityNeverMovesBackward(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	fresh := clock.Now()
	m.ActivityUpdated(fresh)

	// A delayed debounce mark from before must not shorten remaining time.
	m.ActivityUpdated(fresh.Add(-10 * time.Minute))
	if got := m.LastActivity(); !got.Equal(fresh) {
		t.Errorf("LastActivity = %v, want %v (stale mark applied)", got, fresh)
	}
}

func TestMonitorExtendedClearsWarningAndRestarts(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	clock.Advance(27 * time.Minute)
	if res := m.Check(); res.State != StateWarning {
		t.Fatalf("State = %v, want warning", res.State)
	}

	m.Extended()
	if res := m.Check(); res.State != StateActive {
		t.Errorf("State = %v immediately after extension, want active", res.State)
	}
	if m.Remaining() != testTimeout {
		t.Errorf("Remaining = %v after extension, want %v", m.Remaining(), testTimeout)
	}
}

func TestMonitorHydrateSeedsCountdown(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	// The previous process last saw activity 28 minutes ago.
	m.Hydrate(clock.Now().Add(-28 * time.Minute))
	if res := m.Check(); res.State != StateWarning {
		t.Errorf("State = %v after hydration, want warning", res.State)
	}

	// Zero timestamps are ignored.
	m2 := newTestMonitor(clock)
	m2.Hydrate(time.Time{})
	if res := m2.Check(); res.State != StateActive {
		t.Errorf("State = %v after zero hydration, want active", res.State)
	}
}

func TestMonitorShouldValidateGatesInterval(t *testing.T) {
	clock := newFakeClock()
	m := newTestMonitor(clock)

	if m.ShouldValidate() {
		t.Error("validation due immediately after construction")
	}

	clock.Advance(testValidate)
	if !m.ShouldValidate() {
		t.Error("validation not due after the interval")
	}
	// The window was consumed.
	if m.ShouldValidate() {
		t.Error("second caller in the same window also validated")
	}

	clock.Advance(testValidate)
	if !m.ShouldValidate() {
		t.Error("validation not due after the next interval")
	}
}
