// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types shared across the qna-tui client.
//
// These mirror the wire shapes of the board backend: the session user record
// (as returned by login and mirrored into the local state file), questions
// and answers for the board views, and point-shop products.
//
// The types here are plain data carriers. Session lifecycle behavior lives in
// internal/session; transport lives in internal/api.
package model
