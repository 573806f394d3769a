// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package board provides the question board views for the TUI.
//
// This file defines keyboard bindings and shortcuts for the board interface.
package board

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the board interface.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Refresh key.Binding
	Ask     key.Binding
	Shop    key.Binding
	Search  key.Binding
	Answer  key.Binding
	VoteUp  key.Binding
	VoteDn  key.Binding
	Accept  key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Next    key.Binding
	Submit  key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings for the board interface.
// Navigation supports both arrow keys and vim-style j/k.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Ask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "ask question"),
		),
		Shop: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "point shop"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search users"),
		),
		Answer: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "write answer"),
		),
		VoteUp: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vote up"),
		),
		VoteDn: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "vote down"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "accept answer"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "submit"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar for a view.
func (k KeyMap) ShortHelp(view View) []key.Binding {
	switch view {
	case ViewQuestions:
		return []key.Binding{k.Select, k.Ask, k.Shop, k.Refresh, k.Logout, k.Quit}
	case ViewDetail:
		return []key.Binding{k.Answer, k.VoteUp, k.Accept, k.Back, k.Quit}
	case ViewAsk, ViewSignup:
		return []key.Binding{k.Next, k.Submit, k.Back, k.Quit}
	case ViewPointShop:
		return []key.Binding{k.Select, k.Refresh, k.Back, k.Quit}
	default:
		return []key.Binding{k.Select, k.Quit}
	}
}
