// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the client-side session record.
//
// All session state lives in one JSON document (~/.qna/state.json): the user
// record, the logged-in marker, the last-activity timestamp, and the view to
// return to after a forced re-login. Keeping it in a single file means
// logout clears everything in one atomic remove, so no partial state can
// survive a crash mid-teardown.
//
// A corrupt or unreadable state file is treated as absent, never as an
// error: the worst outcome of damaged local state is a fresh login prompt.
//
// The optional sealer encrypts the document at rest with AES-256-GCM; the
// watcher lets concurrent qna processes observe each other's logins and
// logouts through the shared file.
package storage
