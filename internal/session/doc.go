// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the client-side session lifecycle.
//
// Three layers, from the bottom up:
//
//   - Tracker coalesces raw activity signals (keystrokes, mouse events) into
//     debounced activity marks.
//   - Monitor derives session state from elapsed idle time: Active, then
//     Warning once less than the warning lead remains, then Expired.
//     It is passive; a ticker (or a bubbletea tick) drives Check.
//   - Manager owns the whole lifecycle: login, hydration from disk, the
//     periodic local check, the periodic server revalidation, extension, and
//     an idempotent teardown that every expiry path converges on.
//
// Time is injected through Clock so tests drive the state machine logically
// instead of sleeping.
package session
