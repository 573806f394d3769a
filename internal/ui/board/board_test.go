// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/session"
	"github.com/jeranaias/qna-tui/internal/storage"
	"github.com/jeranaias/qna-tui/internal/ui/components"
	"github.com/jeranaias/qna-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	store := storage.NewStore(t.TempDir())
	client := api.New("http://127.0.0.1:1")
	mgr := session.NewManager(client, store, session.Options{})
	t.Cleanup(mgr.Close)
	return New(styles.NewTheme(), client, mgr, store, nil)
}

func TestStartsOnLoginWhenLoggedOut(t *testing.T) {
	m := newTestModel(t)
	if m.view != ViewLogin {
		t.Fatalf("view = %v, want ViewLogin", m.view)
	}
}

func TestResumesOnBoardWithPersistedSession(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewStore(dir)
	if err := store.Save(&storage.State{
		User:         &model.User{UserID: "alice", MemberID: 42},
		LoggedIn:     true,
		LastActivity: time.Now().UnixMilli(),
	}); err != nil {
		t.Fatal(err)
	}

	client := api.New("http://127.0.0.1:1")
	mgr := session.NewManager(client, store, session.Options{})
	defer mgr.Close()

	m := New(styles.NewTheme(), client, mgr, store, nil)
	if m.view != ViewQuestions {
		t.Fatalf("view = %v, want ViewQuestions", m.view)
	}
}

func TestSessionEndShowsExpiredNotice(t *testing.T) {
	m := newTestModel(t)
	m.view = ViewQuestions
	m.questions = []model.Question{{ID: 1, Title: "stale"}}

	m.handleSessionEnd(session.ReasonExpired)

	if m.view != ViewLogin {
		t.Fatalf("view = %v, want ViewLogin", m.view)
	}
	if m.expiredNotice == "" {
		t.Error("expired teardown should set the login notice")
	}
	if m.questions != nil {
		t.Error("board content should be dropped on teardown")
	}

	out := m.viewLogin()
	if !strings.Contains(out, "session has expired") {
		t.Errorf("login view missing expiry notice:\n%s", out)
	}
}

func TestUserLogoutLeavesNoExpiredNotice(t *testing.T) {
	m := newTestModel(t)
	m.view = ViewQuestions
	m.handleSessionEnd(session.ReasonUser)
	if m.expiredNotice != "" {
		t.Errorf("user logout set expired notice %q", m.expiredNotice)
	}
}

func TestWarningDialogIsModal(t *testing.T) {
	m := newTestModel(t)
	m.view = ViewQuestions

	mm, _ := m.Update(session.WarningMsg{Remaining: 4 * time.Minute})
	m = mm.(*Model)
	if !m.warning.Visible() {
		t.Fatal("warning dialog should be visible after WarningMsg")
	}

	// While the dialog is up, navigation keys toggle the choice instead of
	// reaching the board.
	mm, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mm.(*Model)
	if m.warning.Selected() != components.ChoiceLogout {
		t.Error("tab did not toggle the dialog choice")
	}
	if m.cursor != 0 {
		t.Error("board cursor moved while dialog was modal")
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags(" go , concurrency,,tui ")
	want := []string{"go", "concurrency", "tui"}
	if len(got) != len(want) {
		t.Fatalf("splitTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestViewNamesRoundTrip(t *testing.T) {
	for v, name := range viewNames {
		got, ok := viewByName(name)
		if !ok || got != v {
			t.Errorf("viewByName(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := viewByName("nope"); ok {
		t.Error("unknown view name resolved")
	}
}

func TestRenderAnswerBodyExtractsCodeFence(t *testing.T) {
	content := "Use a channel:\n```go\nch := make(chan int)\n```\nthat's it"
	out := renderAnswerBody(content, 80)

	if !strings.Contains(out, "make(chan int)") {
		t.Errorf("code body missing from render:\n%s", out)
	}
	if !strings.Contains(out, "go") {
		t.Errorf("language header missing from render:\n%s", out)
	}
	if strings.Contains(out, "```") {
		t.Errorf("fence markers leaked into render:\n%s", out)
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	m := newTestModel(t)
	m.focusLogin(1)

	mm, cmd := m.updateLogin(tea.KeyMsg{Type: tea.KeyEnter})
	m = mm.(*Model)
	if cmd != nil {
		t.Error("empty form should not submit")
	}
	if m.loginErr == "" {
		t.Error("empty form should set a field error")
	}
}
