// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// State is the session's position in the idle countdown.
type State int

const (
	// StateActive means elapsed idle time is under the warning threshold.
	StateActive State = iota
	// StateWarning means the session expires within the warning lead.
	StateWarning
	// StateExpired means the idle timeout has fully elapsed.
	StateExpired
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// CheckResult is one evaluation of the idle countdown.
type CheckResult struct {
	State     State
	Remaining time.Duration

	// WarningEntered is true on the first check inside the warning zone
	// since the last activity reset. Later checks in the same zone report
	// the state but not the edge, so the warning dialog appears once.
	WarningEntered bool

	// Expired is true on the first check at or past the timeout. Exactly
	// one check reports it; the logout it triggers must not re-fire.
	Expired bool
}

// Monitor derives session state from elapsed idle time.
//
// It is passive: nothing happens between Check calls, so worst-case
// detection latency equals the caller's tick interval. All thresholds are
// evaluated against the injected clock.
type Monitor struct {
	mu sync.Mutex

	clock       Clock
	timeout     time.Duration
	warningLead time.Duration

	lastActivity time.Time
	warningShown bool
	expiredFired bool

	// Remote validation gating.
	validationInterval time.Duration
	lastValidation     time.Time
}

// NewMonitor creates a monitor with the idle clock starting now.
func NewMonitor(clock Clock, timeout, warningLead, validationInterval time.Duration) *Monitor {
	if clock == nil {
		clock = SystemClock()
	}
	now := clock.Now()
	return &Monitor{
		clock:              clock,
		timeout:            timeout,
		warningLead:        warningLead,
		lastActivity:       now,
		validationInterval: validationInterval,
		lastValidation:     now,
	}
}

// ActivityUpdated moves the idle reference point to at and clears the
// warning immediately, without waiting for the next tick.
//
// The reference never moves backward: a delayed debounce mark arriving
// after a fresher one must not shorten the remaining time.
func (m *Monitor) ActivityUpdated(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if at.After(m.lastActivity) {
		m.lastActivity = at
	}
	m.warningShown = false
}

// Extended resets the idle clock to now after a successful server-side
// extension.
func (m *Monitor) Extended() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.clock.Now()
	m.warningShown = false
	m.expiredFired = false
}

// Reset restarts the countdown for a fresh session.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.lastActivity = now
	m.lastValidation = now
	m.warningShown = false
	m.expiredFired = false
}

// Hydrate seeds the idle reference from persisted state, so a restart
// mid-session picks up the countdown where it left off. Zero is ignored.
func (m *Monitor) Hydrate(lastActivity time.Time) {
	if lastActivity.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = lastActivity
}

// LastActivity returns the current idle reference point.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Remaining returns the time left before expiry, floored at zero.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := m.timeout - m.clock.Now().Sub(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Check evaluates the countdown once.
func (m *Monitor) Check() CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.clock.Now().Sub(m.lastActivity)
	remaining := m.timeout - elapsed
	if remaining < 0 {
		remaining = 0
	}

	res := CheckResult{Remaining: remaining}

	switch {
	case elapsed >= m.timeout:
		res.State = StateExpired
		if !m.expiredFired {
			m.expiredFired = true
			res.Expired = true
		}
	case elapsed >= m.timeout-m.warningLead:
		res.State = StateWarning
		if !m.warningShown {
			m.warningShown = true
			res.WarningEntered = true
		}
	default:
		res.State = StateActive
	}
	return res
}

// ShouldValidate reports whether a server revalidation is due, and if so
// consumes the interval so concurrent callers get one probe per window.
func (m *Monitor) ShouldValidate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if now.Sub(m.lastValidation) < m.validationInterval {
		return false
	}
	m.lastValidation = now
	return true
}
