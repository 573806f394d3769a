// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// qna-tui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.qna/config.toml
//   - ~/.qna/config.json
//   - Built-in defaults
//
// The session timing values mirror the board backend's idle-session policy:
// a 30 minute idle timeout with a 5 minute warning lead, checked locally
// every minute and revalidated against the server every 5 minutes. All four
// can be overridden per-deployment via QNA_SESSION_* environment variables
// (in milliseconds, matching the backend's own configuration units).
package config
