// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/storage"
)

// LogoutReason says which path tore the session down.
type LogoutReason int

const (
	// ReasonUser is an explicit logout request.
	ReasonUser LogoutReason = iota
	// ReasonExpired is the local idle timeout.
	ReasonExpired
	// ReasonInvalidated is a failed server revalidation.
	ReasonInvalidated
	// ReasonUnauthorized is a 401 from any backend call.
	ReasonUnauthorized
	// ReasonExternal is a logout observed from another qna process.
	ReasonExternal
)

// String returns the reason name for logs and the login-view notice.
func (r LogoutReason) String() string {
	switch r {
	case ReasonUser:
		return "logged out"
	case ReasonExpired:
		return "session expired"
	case ReasonInvalidated:
		return "session no longer valid"
	case ReasonUnauthorized:
		return "session rejected by server"
	case ReasonExternal:
		return "logged out elsewhere"
	default:
		return "logged out"
	}
}

// Expiry reports whether the reason should surface the "session expired"
// notice on the login view.
func (r LogoutReason) Expiry() bool {
	return r == ReasonExpired || r == ReasonInvalidated || r == ReasonUnauthorized
}

// Options configures a Manager. Zero durations fall back to the defaults
// from the board backend's session policy.
type Options struct {
	Clock              Clock
	IdleTimeout        time.Duration // default 30m
	WarningLead        time.Duration // default 5m
	CheckInterval      time.Duration // default 60s
	ValidationInterval time.Duration // default 5m
	Debounce           time.Duration // default 300ms
}

func (o *Options) fillDefaults() {
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 30 * time.Minute
	}
	if o.WarningLead <= 0 {
		o.WarningLead = 5 * time.Minute
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = time.Minute
	}
	if o.ValidationInterval <= 0 {
		o.ValidationInterval = 5 * time.Minute
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
}

// Manager owns the session lifecycle for one process.
//
// Every expiry path converges on teardown: the local tick, the periodic
// revalidation, the navigation check, the 401 hook, and external logouts.
// The terminating flag makes the convergence idempotent, and the generation
// counter keeps a stale in-flight validate or extend from resurrecting a
// session that was cleared while it was on the wire.
type Manager struct {
	mu sync.Mutex

	clock   Clock
	client  *api.Client
	store   *storage.Store
	tracker *Tracker
	monitor *Monitor

	checkInterval time.Duration

	user        *model.User
	loggedIn    bool
	terminating bool
	generation  uint64

	onWarning   func(remaining time.Duration)
	onLoggedOut func(reason LogoutReason)
}

// NewManager builds the session lifecycle around a backend client and a
// state store, hydrating from disk exactly once.
//
// Unparsable or absent persisted state means unauthenticated; it is never
// an error.
func NewManager(client *api.Client, store *storage.Store, opts Options) *Manager {
	opts.fillDefaults()

	m := &Manager{
		clock:         opts.Clock,
		client:        client,
		store:         store,
		checkInterval: opts.CheckInterval,
		monitor: NewMonitor(opts.Clock, opts.IdleTimeout, opts.WarningLead,
			opts.ValidationInterval),
	}
	m.tracker = NewTracker(opts.Clock, opts.Debounce, m.activitySettled)

	// Hydrate: a restart mid-session resumes the countdown where the
	// previous process left it.
	st := store.Load()
	if st.LoggedIn && st.User != nil {
		m.user = st.User.Clone()
		m.loggedIn = true
		m.monitor.Hydrate(st.LastActivityTime())
		m.tracker.Enable()
	}

	// A 401 from any backend call, session or board, kills the session.
	// The server already destroyed its side, so there is nothing to notify.
	client.OnSessionExpired(func() {
		go m.teardown(ReasonUnauthorized, false, "")
	})

	return m
}

// SetWarningCallback sets the function called when the warning zone is
// entered.
func (m *Manager) SetWarningCallback(fn func(remaining time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWarning = fn
}

// SetLoggedOutCallback sets the function called after any teardown.
func (m *Manager) SetLoggedOutCallback(fn func(reason LogoutReason)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLoggedOut = fn
}

// =============================================================================
// SESSION STATE
// =============================================================================

// LoggedIn reports whether a live session exists.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

// User returns a copy of the session user record, or nil when logged out.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone()
}

// Remaining returns the time left before local expiry.
func (m *Manager) Remaining() time.Duration {
	return m.monitor.Remaining()
}

// CheckInterval returns the configured local polling interval.
func (m *Manager) CheckInterval() time.Duration {
	return m.checkInterval
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login authenticates and starts a fresh session.
func (m *Manager) Login(ctx context.Context, userID, password string) error {
	user, err := m.client.Login(ctx, userID, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = user
	m.loggedIn = true
	m.terminating = false
	m.generation++
	m.mu.Unlock()

	m.monitor.Reset()
	m.tracker.Enable()

	if err := m.persist(); err != nil {
		// The session is live regardless; persistence is a convenience.
		log.Printf("session: failed to persist state: %v", err)
	}
	return nil
}

// Logout ends the session at the user's request. The server is notified
// best-effort; local teardown completes even if the call fails.
func (m *Manager) Logout(ctx context.Context) {
	m.teardownCtx(ctx, ReasonUser, true, "")
}

// HandleExternalState reacts to a state-file change made by another qna
// process: its logout becomes our logout.
func (m *Manager) HandleExternalState(st *storage.State) {
	m.mu.Lock()
	wasLoggedIn := m.loggedIn
	m.mu.Unlock()

	if wasLoggedIn && (st == nil || !st.LoggedIn) {
		// The other process already cleared the file and told the server.
		m.teardown(ReasonExternal, false, "")
	}
}

// teardown destroys the session. Safe to call from any path, any number of
// times; only the first caller does work.
func (m *Manager) teardown(reason LogoutReason, notifyServer bool, returnView string) {
	ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
	defer cancel()
	m.teardownCtx(ctx, reason, notifyServer, returnView)
}

func (m *Manager) teardownCtx(ctx context.Context, reason LogoutReason, notifyServer bool, returnView string) {
	m.mu.Lock()
	if m.terminating || !m.loggedIn {
		m.mu.Unlock()
		return
	}
	m.terminating = true
	m.loggedIn = false
	m.user = nil
	m.generation++
	onLoggedOut := m.onLoggedOut
	m.mu.Unlock()

	m.tracker.Disable()

	if notifyServer {
		if err := m.client.Logout(ctx); err != nil {
			// Local teardown proceeds regardless.
			log.Printf("session: server logout failed: %v", err)
		}
	}

	// One remove clears every persisted key at once.
	if err := m.store.Clear(); err != nil {
		log.Printf("session: failed to clear state: %v", err)
	}
	if returnView != "" {
		if err := m.store.SetReturnView(returnView); err != nil {
			log.Printf("session: failed to record return view: %v", err)
		}
	}

	if onLoggedOut != nil {
		onLoggedOut(reason)
	}
}

// =============================================================================
// ACTIVITY
// =============================================================================

// RecordActivity feeds one raw activity signal (keystroke, mouse event)
// into the debouncer.
func (m *Manager) RecordActivity() {
	m.tracker.Touch()
}

// activitySettled receives the debounced activity mark.
func (m *Manager) activitySettled(at time.Time) {
	m.mu.Lock()
	live := m.loggedIn && !m.terminating
	m.mu.Unlock()
	if !live {
		return
	}

	m.monitor.ActivityUpdated(at)

	if err := m.store.TouchActivity(at); err != nil {
		log.Printf("session: failed to persist activity: %v", err)
	}

	// Best-effort heartbeat; the client rate-limits and swallows noise.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
		defer cancel()
		_ = m.client.Heartbeat(ctx)
	}()
}

// =============================================================================
// PERIODIC CHECKS
// =============================================================================

// Tick runs one local expiry check. The caller drives the cadence, either
// via Run or a bubbletea tick.
func (m *Manager) Tick() CheckResult {
	m.mu.Lock()
	live := m.loggedIn && !m.terminating
	onWarning := m.onWarning
	m.mu.Unlock()
	if !live {
		return CheckResult{}
	}

	res := m.monitor.Check()

	if res.WarningEntered && onWarning != nil {
		onWarning(res.Remaining)
	}
	if res.Expired {
		m.teardown(ReasonExpired, true, "")
	}
	return res
}

// MaybeValidate runs a server revalidation when one is due. A dead or
// unreachable session forces logout; the original client treats a probe it
// cannot complete the same as a probe that came back invalid.
func (m *Manager) MaybeValidate(ctx context.Context) {
	m.mu.Lock()
	live := m.loggedIn && !m.terminating
	m.mu.Unlock()
	if !live || !m.monitor.ShouldValidate() {
		return
	}
	m.validate(ctx, "")
}

// ValidateOnNavigate revalidates on a view change while authenticated. On
// failure the target view is recorded so login can return the user there.
func (m *Manager) ValidateOnNavigate(ctx context.Context, view string) {
	m.mu.Lock()
	live := m.loggedIn && !m.terminating
	m.mu.Unlock()
	if !live {
		return
	}
	m.validate(ctx, view)
}

// validate performs one probe, generation-guarded against staleness.
func (m *Manager) validate(ctx context.Context, returnView string) {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	res, err := m.client.Validate(ctx)

	m.mu.Lock()
	stale := m.generation != gen || m.terminating
	m.mu.Unlock()
	if stale {
		// The session this probe was asking about is gone; whatever the
		// answer, it must not touch the current state.
		return
	}

	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			// The 401 hook already started teardown.
			return
		}
		m.teardown(ReasonInvalidated, false, returnView)
		return
	}
	if !res.Valid {
		m.teardown(ReasonInvalidated, false, returnView)
		return
	}

	// Refresh the advisory expiry.
	m.mu.Lock()
	if m.user != nil && res.ExpiresAt != 0 {
		m.user.ExpiresAt = res.ExpiresAt
	}
	m.mu.Unlock()
}

// Extend pushes the session expiry forward server-side and resets the local
// idle clock. A failed extension forces logout: the warning dialog offered
// exactly two exits.
func (m *Manager) Extend(ctx context.Context) error {
	m.mu.Lock()
	gen := m.generation
	live := m.loggedIn && !m.terminating
	m.mu.Unlock()
	if !live {
		return api.ErrSessionExpired
	}

	res, err := m.client.Extend(ctx)

	m.mu.Lock()
	stale := m.generation != gen || m.terminating
	m.mu.Unlock()
	if stale {
		return api.ErrSessionExpired
	}

	if err != nil {
		if !errors.Is(err, api.ErrSessionExpired) {
			m.teardown(ReasonInvalidated, false, "")
		}
		return err
	}

	m.monitor.Extended()
	m.mu.Lock()
	if m.user != nil && res.ExpiresAt != 0 {
		m.user.ExpiresAt = res.ExpiresAt
	}
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		log.Printf("session: failed to persist state: %v", err)
	}
	return nil
}

// UpdateUserPoints patches the local point balance after a purchase or an
// accepted answer, with no server round-trip.
func (m *Manager) UpdateUserPoints(points int) {
	m.mu.Lock()
	if m.user != nil {
		m.user.Points = points
	}
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		log.Printf("session: failed to persist state: %v", err)
	}
}

// persist mirrors the in-memory session into the state file.
func (m *Manager) persist() error {
	m.mu.Lock()
	st := &storage.State{
		User:         m.user.Clone(),
		LoggedIn:     m.loggedIn,
		LastActivity: m.monitor.LastActivity().UnixMilli(),
	}
	m.mu.Unlock()
	return m.store.Save(st)
}

// Run drives the periodic checks until ctx is cancelled. The TUI does not
// use it (bubbletea ticks call Tick/MaybeValidate directly); it is for
// embedding the manager in a plain loop without a tea program.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick()
			m.MaybeValidate(ctx)
		}
	}
}

// Close releases the manager without logging out: the persisted session
// survives for the next process.
func (m *Manager) Close() {
	m.tracker.Disable()
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to drive the local expiry check.
type TickMsg struct {
	Time time.Time
}

// WarningMsg indicates the session entered the warning zone.
type WarningMsg struct {
	Remaining time.Duration
}

// ExpiredMsg indicates the session was torn down.
type ExpiredMsg struct {
	Reason LogoutReason
}

// TickCmd returns a command that ticks at the given interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes one tick from the UI and schedules the next.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	res := m.Tick()
	if res.WarningEntered {
		remaining := res.Remaining
		cmds = append(cmds, func() tea.Msg {
			return WarningMsg{Remaining: remaining}
		})
	}
	if res.Expired {
		cmds = append(cmds, func() tea.Msg {
			return ExpiredMsg{Reason: ReasonExpired}
		})
	}

	cmds = append(cmds, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
		defer cancel()
		m.MaybeValidate(ctx)
		return nil
	})

	cmds = append(cmds, TickCmd(m.checkInterval))
	return tea.Batch(cmds...)
}
