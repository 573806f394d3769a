// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/storage"
)

// sessionBackend is a scriptable fake board backend.
type sessionBackend struct {
	mu          sync.Mutex
	logoutCalls int
	validBody   string
	validStatus int
	extendBody  string
	extendCode  int
	slowBy      time.Duration
}

func newSessionBackend() *sessionBackend {
	return &sessionBackend{
		validBody:   `{"valid":true,"userId":"alice","mbrId":42}`,
		validStatus: http.StatusOK,
		extendBody:  `{"message":"extended","expiresAt":1800000000000}`,
		extendCode:  http.StatusOK,
	}
}

func (b *sessionBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	slow := b.slowBy
	b.mu.Unlock()
	if slow > 0 {
		time.Sleep(slow)
	}

	switch r.URL.Path {
	case "/login/loginProcess":
		http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "s1"})
		w.Write([]byte(`{"code":"0000","userId":"alice","sessionId":"sess-1","mbrId":42,"point":100}`))
	case "/auth/session/validate":
		b.mu.Lock()
		status, body := b.validStatus, b.validBody
		b.mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(body))
	case "/auth/session/logout":
		b.mu.Lock()
		b.logoutCalls++
		b.mu.Unlock()
		w.Write([]byte(`{"message":"bye"}`))
	case "/auth/session/extend":
		b.mu.Lock()
		code, body := b.extendCode, b.extendBody
		b.mu.Unlock()
		w.WriteHeader(code)
		w.Write([]byte(body))
	case "/auth/session/activity":
		w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}
}

func (b *sessionBackend) LogoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

func newTestManager(t *testing.T, backend *sessionBackend) (*Manager, *storage.Store, *fakeClock) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	store := storage.NewStore(t.TempDir())
	mgr := NewManager(api.New(srv.URL), store, Options{
		Clock:              clock,
		IdleTimeout:        testTimeout,
		WarningLead:        testWarnLead,
		ValidationInterval: testValidate,
		Debounce:           20 * time.Millisecond,
	})
	return mgr, store, clock
}

func loggedOutChan(mgr *Manager) chan LogoutReason {
	ch := make(chan LogoutReason, 8)
	mgr.SetLoggedOutCallback(func(r LogoutReason) { ch <- r })
	return ch
}

func waitLogout(t *testing.T, ch chan LogoutReason) LogoutReason {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("teardown never completed")
		return 0
	}
}

func TestManagerLoginPersists(t *testing.T) {
	mgr, store, _ := newTestManager(t, newSessionBackend())

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !mgr.LoggedIn() {
		t.Fatal("not logged in after Login")
	}
	if u := mgr.User(); u == nil || u.UserID != "alice" || u.Points != 100 {
		t.Errorf("User = %+v", u)
	}

	st := store.Load()
	if !st.LoggedIn || st.User == nil || st.User.UserID != "alice" {
		t.Errorf("persisted state = %+v", st)
	}
}

func TestManagerHydratesFromDisk(t *testing.T) {
	backend := newSessionBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	store := storage.NewStore(t.TempDir())
	if err := store.Save(&storage.State{
		User:         &model.User{UserID: "alice", MemberID: 42},
		LoggedIn:     true,
		LastActivity: clock.Now().Add(-28 * time.Minute).UnixMilli(),
	}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	mgr := NewManager(api.New(srv.URL), store, Options{
		Clock:       clock,
		IdleTimeout: testTimeout,
		WarningLead: testWarnLead,
	})
	if !mgr.LoggedIn() {
		t.Fatal("hydration lost the session")
	}

	// The countdown resumed where the previous process left it: 28 minutes
	// idle means the warning zone.
	if res := mgr.Tick(); res.State != StateWarning {
		t.Errorf("State = %v after hydration, want warning", res.State)
	}
}

func TestManagerLocalExpiryTearsDownOnce(t *testing.T) {
	backend := newSessionBackend()
	mgr, store, clock := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(testTimeout + time.Second)

	// Concurrent ticks all race into the expiry path; only one wins.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.Tick()
		}()
	}
	wg.Wait()

	if r := waitLogout(t, ch); r != ReasonExpired {
		t.Errorf("reason = %v, want expired", r)
	}
	select {
	case r := <-ch:
		t.Fatalf("teardown ran twice (second reason %v)", r)
	default:
	}

	if backend.LogoutCalls() != 1 {
		t.Errorf("server logout called %d times, want 1", backend.LogoutCalls())
	}
	if mgr.LoggedIn() {
		t.Error("still logged in after expiry")
	}
	if st := store.Load(); st.LoggedIn || st.User != nil {
		t.Errorf("state survived teardown: %+v", st)
	}
}

func TestManagerRemoteInvalidationTearsDown(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, clock := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.mu.Lock()
	backend.validBody = `{"valid":false}`
	backend.mu.Unlock()

	clock.Advance(testValidate)
	mgr.MaybeValidate(context.Background())

	if r := waitLogout(t, ch); r != ReasonInvalidated {
		t.Errorf("reason = %v, want invalidated", r)
	}
	// Nothing to notify: the server already rejected the session.
	if backend.LogoutCalls() != 0 {
		t.Errorf("server logout called %d times, want 0", backend.LogoutCalls())
	}
}

func TestManagerValidationSkippedInsideInterval(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, _ := newTestManager(t, backend)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.mu.Lock()
	backend.validBody = `{"valid":false}` // would kill the session if probed
	backend.mu.Unlock()

	mgr.MaybeValidate(context.Background()) // interval not yet elapsed
	if !mgr.LoggedIn() {
		t.Error("validation ran before the interval elapsed")
	}
}

func TestManagerUnauthorizedTearsDown(t *testing.T) {
	backend := newSessionBackend()
	mgr, store, clock := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.mu.Lock()
	backend.validStatus = http.StatusUnauthorized
	backend.validBody = `{"message":"session expired"}`
	backend.mu.Unlock()

	clock.Advance(testValidate)
	mgr.MaybeValidate(context.Background())

	if r := waitLogout(t, ch); r != ReasonUnauthorized {
		t.Errorf("reason = %v, want unauthorized", r)
	}
	if st := store.Load(); st.LoggedIn {
		t.Error("state survived 401 teardown")
	}
}

func TestManagerExtendResetsCountdown(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, clock := newTestManager(t, backend)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(27 * time.Minute)
	if res := mgr.Tick(); res.State != StateWarning {
		t.Fatalf("State = %v, want warning", res.State)
	}

	if err := mgr.Extend(context.Background()); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !mgr.LoggedIn() {
		t.Fatal("logged out by successful extension")
	}
	if res := mgr.Tick(); res.State != StateActive {
		t.Errorf("State = %v after extension, want active", res.State)
	}
	if u := mgr.User(); u.ExpiresAt != 1800000000000 {
		t.Errorf("ExpiresAt = %d, server value not applied", u.ExpiresAt)
	}
}

func TestManagerExtendFailureTearsDown(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, _ := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.mu.Lock()
	backend.extendCode = http.StatusInternalServerError
	backend.extendBody = `{"message":"cannot extend"}`
	backend.mu.Unlock()

	if err := mgr.Extend(context.Background()); err == nil {
		t.Fatal("expected error from failed extension")
	}
	if r := waitLogout(t, ch); r != ReasonInvalidated {
		t.Errorf("reason = %v, want invalidated", r)
	}
}

func TestManagerStaleValidateCannotResurrect(t *testing.T) {
	backend := newSessionBackend()
	mgr, store, clock := newTestManager(t, backend)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// The validate probe stalls on the wire while the user logs out.
	backend.mu.Lock()
	backend.slowBy = 150 * time.Millisecond
	backend.mu.Unlock()

	clock.Advance(testValidate)
	done := make(chan struct{})
	go func() {
		mgr.MaybeValidate(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	backend.mu.Lock()
	backend.slowBy = 0
	backend.mu.Unlock()
	mgr.Logout(context.Background())

	<-done

	// The probe's "valid" answer arrived for a session that no longer
	// exists; it must not bring it back.
	if mgr.LoggedIn() {
		t.Error("stale validation resurrected a cleared session")
	}
	if st := store.Load(); st.LoggedIn || st.User != nil {
		t.Errorf("stale validation rewrote state: %+v", st)
	}
}

func TestManagerValidateOnNavigateRecordsReturnView(t *testing.T) {
	backend := newSessionBackend()
	mgr, store, _ := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.mu.Lock()
	backend.validBody = `{"valid":false}`
	backend.mu.Unlock()

	mgr.ValidateOnNavigate(context.Background(), "ask-question")
	waitLogout(t, ch)

	view, err := store.TakeReturnView()
	if err != nil || view != "ask-question" {
		t.Errorf("return view = %q, %v; want ask-question", view, err)
	}
}

func TestManagerExternalLogoutObserved(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, _ := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Another process cleared the state file.
	mgr.HandleExternalState(&storage.State{})

	if r := waitLogout(t, ch); r != ReasonExternal {
		t.Errorf("reason = %v, want external", r)
	}
	// The other process already told the server.
	if backend.LogoutCalls() != 0 {
		t.Errorf("server logout called %d times, want 0", backend.LogoutCalls())
	}
}

func TestManagerActivityResetsViaTracker(t *testing.T) {
	backend := newSessionBackend()
	mgr, store, clock := newTestManager(t, backend)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(27 * time.Minute)
	mgr.Tick() // warning zone

	mgr.RecordActivity()
	time.Sleep(100 * time.Millisecond) // debounce settles at 20ms

	if res := mgr.Tick(); res.State != StateActive {
		t.Errorf("State = %v after activity, want active", res.State)
	}

	st := store.Load()
	if !st.LastActivityTime().Equal(clock.Now()) {
		t.Errorf("persisted LastActivity = %v, want %v", st.LastActivityTime(), clock.Now())
	}
}

func TestManagerRunDrivesExpiry(t *testing.T) {
	backend := newSessionBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	store := storage.NewStore(t.TempDir())
	mgr := NewManager(api.New(srv.URL), store, Options{
		Clock:         clock,
		IdleTimeout:   testTimeout,
		WarningLead:   testWarnLead,
		CheckInterval: 10 * time.Millisecond,
	})
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(done)
	}()

	clock.Advance(testTimeout + time.Second)
	if r := waitLogout(t, ch); r != ReasonExpired {
		t.Errorf("reason = %v, want expired", r)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestManagerLoginAfterTeardown(t *testing.T) {
	backend := newSessionBackend()
	mgr, _, clock := newTestManager(t, backend)
	ch := loggedOutChan(mgr)

	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	clock.Advance(testTimeout + time.Second)
	mgr.Tick()
	waitLogout(t, ch)

	// A fresh login revives the manager.
	if err := mgr.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if !mgr.LoggedIn() {
		t.Fatal("not logged in after re-login")
	}
	if res := mgr.Tick(); res.State != StateActive {
		t.Errorf("State = %v after re-login, want active", res.State)
	}
}
