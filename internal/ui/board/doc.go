// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package board implements the qna TUI: the question board, question
// detail, ask form, point shop, signup, and the login view.
//
// Every key and mouse message feeds the session manager's activity tracker,
// making the TUI the DOM-event source of the session lifecycle. The session
// warning dialog is pure presentation; entering and leaving the warning
// zone, expiry, and teardown all live in internal/session.
package board
