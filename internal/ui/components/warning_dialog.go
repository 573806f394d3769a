// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qna-tui/internal/ui/styles"
	"github.com/jeranaias/qna-tui/internal/util"
)

// WarningChoice is the user's answer to the timeout warning.
type WarningChoice int

const (
	// ChoiceStay extends the session.
	ChoiceStay WarningChoice = iota
	// ChoiceLogout ends it now.
	ChoiceLogout
)

// WarningDialog is the session-timeout warning modal: a live countdown and
// exactly two exits. It renders state and collects a choice; the session
// manager owns all expiry logic.
type WarningDialog struct {
	visible   bool
	remaining time.Duration
	selected  WarningChoice
}

// NewWarningDialog creates a hidden dialog.
func NewWarningDialog() *WarningDialog {
	return &WarningDialog{}
}

// Show opens the dialog with the given time remaining.
func (d *WarningDialog) Show(remaining time.Duration) {
	d.visible = true
	d.remaining = remaining
	d.selected = ChoiceStay
}

// Hide closes the dialog.
func (d *WarningDialog) Hide() {
	d.visible = false
}

// Visible reports whether the dialog is open.
func (d *WarningDialog) Visible() bool {
	return d.visible
}

// SetRemaining updates the countdown. The caller feeds it fresh values from
// the session manager every second; the dialog never computes time itself.
func (d *WarningDialog) SetRemaining(remaining time.Duration) {
	d.remaining = remaining
}

// Toggle flips between the two buttons.
func (d *WarningDialog) Toggle() {
	if d.selected == ChoiceStay {
		d.selected = ChoiceLogout
	} else {
		d.selected = ChoiceStay
	}
}

// Selected returns the highlighted choice.
func (d *WarningDialog) Selected() WarningChoice {
	return d.selected
}

// CountdownTickMsg drives the dialog's once-a-second refresh.
type CountdownTickMsg struct {
	Time time.Time
}

// CountdownTickCmd ticks once per second while the dialog is open.
func CountdownTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return CountdownTickMsg{Time: t}
	})
}

// Render draws the modal centered in the given area.
func (d *WarningDialog) Render(theme *styles.Theme, width, height int) string {
	if !d.visible {
		return ""
	}

	title := theme.DialogTitle.Render("Session expiring soon")
	countdown := theme.Countdown.Render(util.FormatCountdown(d.remaining))
	body := "You will be logged out in " + countdown + " due to inactivity."

	stay := theme.DialogButton.Render("[ Stay signed in ]")
	logout := theme.DialogButton.Render("[ Log out ]")
	if d.selected == ChoiceStay {
		stay = theme.DialogSelected.Render("[ Stay signed in ]")
	} else {
		logout = theme.DialogSelected.Render("[ Log out ]")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, stay, "  ", logout)

	hint := theme.Muted.Render("←/→ select · enter confirm")

	box := theme.DialogBox.Render(
		lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", buttons, hint))

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
