// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the qna board backend.
//
// The backend authenticates with a session cookie set at login; the client
// carries it in an in-memory cookie jar and never inspects it. Every request
// has a fixed 10 second deadline and is never retried: the session layer
// polls on its own schedule, so a failed probe is simply superseded by the
// next one, and retrying a mutation could double-post.
//
// Error taxonomy, in order of specificity:
//   - ErrTimeout: the 10s deadline elapsed
//   - ErrSessionExpired: any endpoint answered 401
//   - *APIError: the backend answered with a structured error body
//   - wrapped transport errors for everything else
//
// A 401 from ANY endpoint additionally fires the client's expiry hook so the
// session manager can tear down exactly once, regardless of which call
// discovered the dead session.
package api
