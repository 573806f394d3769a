// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the qna TUI.

# Components

WarningDialog (warning_dialog.go) - Modal session-expiry countdown with
[Stay signed in] and [Log out] choices. The dialog is pure presentation:
the session manager decides when it appears and what the countdown shows.

ToastManager (toast.go) - Transient notification stack for errors and
confirmations, expired on a shared tick.

CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma,
used for fenced code in answer bodies.

# Theme Integration

Components accept a *styles.Theme at render time rather than holding
styles themselves:

	d := components.NewWarningDialog()
	d.Show(4 * time.Minute)
	view := d.Render(theme, width, height)
*/
package components
