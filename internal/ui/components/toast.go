// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the qna TUI.
//
// This file implements non-blocking toasts: transient notices in the
// bottom-right corner that auto-dismiss, so backend hiccups don't block the
// board.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qna-tui/internal/ui/styles"
)

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast.
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast.
	ToastKindError
	// ToastKindSuccess is a success toast.
	ToastKindSuccess
)

// Toast durations; errors stay longer so they can be read.
const (
	DefaultToastDuration = 4 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is a non-blocking corner notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// ToastManager manages the visible toast stack.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
}

// NewToastManager creates a toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 4}
}

func (m *ToastManager) add(message string, kind ToastKind, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.toasts = append([]Toast{{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}}, m.toasts...)
	m.nextID++

	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) {
	m.add(message, ToastKindError, ErrorToastDuration)
}

// AddStatus adds an informational toast.
func (m *ToastManager) AddStatus(message string) {
	m.add(message, ToastKindStatus, DefaultToastDuration)
}

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) {
	m.add(message, ToastKindSuccess, DefaultToastDuration)
}

// Tick drops expired toasts and returns the remaining stack.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired() {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// HasToasts returns true if any toast is visible.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks the toast stack.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// RenderToastStack renders the toast stack in the bottom-right corner.
func RenderToastStack(toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		var color lipgloss.AdaptiveColor
		var icon string
		switch toast.Kind {
		case ToastKindError:
			color, icon = styles.Rose, styles.StatusIndicators.Error
		case ToastKindSuccess:
			color, icon = styles.Emerald, styles.StatusIndicators.Success
		default:
			color, icon = styles.Cyan, styles.StatusIndicators.Info
		}

		box := lipgloss.NewStyle().
			Background(styles.SurfaceDim).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(0, 1).
			MaxWidth(max(30, width-8))

		iconStyled := lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon + " ")
		body := lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(toast.Message)
		rendered = append(rendered, box.Render(iconStyled+body))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom,
			lipgloss.NewStyle().MarginRight(2).MarginBottom(1).Render(stack))
	}
	return stack
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
