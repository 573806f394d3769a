// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the qna TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLOR PALETTE
// =============================================================================

// Adaptive colors pick the variant matching the terminal background.
var (
	Cyan    = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	Amber   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	Rose    = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}
	Violet  = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}

	TextPrimary = lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#E2E8F0"}
	TextMuted   = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}

	Surface    = lipgloss.AdaptiveColor{Light: "#F8FAFC", Dark: "#1E293B"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#0F172A"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
)

// StatusIndicators are the glyphs used in toasts and the status bar.
var StatusIndicators = struct {
	Error   string
	Warning string
	Success string
	Info    string
}{
	Error:   "✗",
	Warning: "⚠",
	Success: "✓",
	Info:    "ℹ",
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the board UI.
type Theme struct {
	ColorProfile termenv.Profile
	IsDark       bool

	// Chrome
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style

	// Question board
	QuestionTitle    lipgloss.Style
	QuestionSelected lipgloss.Style
	QuestionMeta     lipgloss.Style
	TagBadge         lipgloss.Style
	VoteCount        lipgloss.Style
	AcceptedMark     lipgloss.Style

	// Forms
	Label      lipgloss.Style
	FieldError lipgloss.Style

	// Dialogs
	DialogBox      lipgloss.Style
	DialogTitle    lipgloss.Style
	DialogButton   lipgloss.Style
	DialogSelected lipgloss.Style
	Countdown      lipgloss.Style

	// Notices
	ExpiredNotice lipgloss.Style
	StaleNotice   lipgloss.Style
	Muted         lipgloss.Style
}

// NewTheme builds the theme for the detected terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		ColorProfile: profile,
		IsDark:       isDark,
	}

	t.Header = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Surface).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.QuestionTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.QuestionSelected = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.QuestionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.TagBadge = lipgloss.NewStyle().
		Foreground(Violet).
		Background(SurfaceDim).
		Padding(0, 1)
	t.VoteCount = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.AcceptedMark = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.Label = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Background(SurfaceDim).
		Padding(1, 3)
	t.DialogTitle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.DialogButton = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)
	t.DialogSelected = lipgloss.NewStyle().
		Foreground(SurfaceDim).
		Background(Cyan).
		Bold(true).
		Padding(0, 2)
	t.Countdown = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ExpiredNotice = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.StaleNotice = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	return t
}
