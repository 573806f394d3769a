// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types shared across the qna-tui client.
package model

import "time"

// User is the client-side session record: the identity the backend confirmed
// at login plus the point balance it reported. It is mirrored into the local
// state file so a restart does not log the user out.
//
// The actual credential is a session cookie held by the HTTP client's jar;
// SessionID is the backend's identifier for that session, kept for display
// and diagnostics only.
type User struct {
	UserID    string `json:"userId"`
	MemberID  int64  `json:"mbrId"`
	SessionID string `json:"sessionId,omitempty"`
	Points    int    `json:"points"`

	// ExpiresAt is the server-reported expiry in epoch milliseconds.
	// Advisory: the client-side idle countdown derives from local activity,
	// and the server is re-asked via validate regardless.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// ExpiryTime converts the advisory server expiry to a time.Time.
// Returns the zero time when the server did not report one.
func (u *User) ExpiryTime() time.Time {
	if u == nil || u.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(u.ExpiresAt)
}

// Clone returns a copy of the user record. The session manager hands copies
// to callers so UI code cannot mutate managed state behind its back.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
