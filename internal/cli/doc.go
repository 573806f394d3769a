// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI surface of qna: argument parsing and
// the login, logout, status, config, and cache subcommands.
//
// The CLI shares the session state file with the TUI, so a login here is a
// login there, and a logout in either process is observed by the other.
package cli
