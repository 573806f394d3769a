// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the qna-tui application.
//
// This package contains common helper functions used throughout the
// application for string display, formatting, and file operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - StringWidth: terminal column width of a string
//
// Formatting:
//   - FormatCount: compact counters for votes/views (1234 -> "1.2k")
//   - FormatRelativeTime: "3h ago" style timestamps for board lists
//   - FormatCountdown: "m:ss" countdown used by the session warning dialog
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
