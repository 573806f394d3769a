// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/qna-tui/internal/ui/styles"
)

func TestWarningDialogLifecycle(t *testing.T) {
	d := NewWarningDialog()
	if d.Visible() {
		t.Fatal("dialog visible before Show")
	}

	d.Show(4*time.Minute + 30*time.Second)
	if !d.Visible() {
		t.Fatal("dialog not visible after Show")
	}
	if d.Selected() != ChoiceStay {
		t.Error("default selection should be ChoiceStay")
	}

	d.Hide()
	if d.Visible() {
		t.Error("dialog visible after Hide")
	}
}

func TestWarningDialogToggle(t *testing.T) {
	d := NewWarningDialog()
	d.Show(time.Minute)

	d.Toggle()
	if d.Selected() != ChoiceLogout {
		t.Error("toggle did not move to ChoiceLogout")
	}
	d.Toggle()
	if d.Selected() != ChoiceStay {
		t.Error("toggle did not move back to ChoiceStay")
	}
}

func TestWarningDialogRenderShowsCountdown(t *testing.T) {
	d := NewWarningDialog()
	d.Show(4*time.Minute + 5*time.Second)

	out := d.Render(styles.NewTheme(), 80, 24)
	if !strings.Contains(out, "4:05") {
		t.Errorf("render missing countdown, got:\n%s", out)
	}
	if !strings.Contains(out, "Stay signed in") || !strings.Contains(out, "Log out") {
		t.Error("render missing the two buttons")
	}

	// Re-showing resets the selection to the safe default.
	d.Toggle()
	d.Show(time.Minute)
	if d.Selected() != ChoiceStay {
		t.Error("Show did not reset selection")
	}
}

func TestWarningDialogHiddenRendersNothing(t *testing.T) {
	d := NewWarningDialog()
	if out := d.Render(styles.NewTheme(), 80, 24); out != "" {
		t.Errorf("hidden dialog rendered %q", out)
	}
}
