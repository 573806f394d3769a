// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types shared across the qna-tui client.
package model

import "time"

// =============================================================================
// QUESTIONS & ANSWERS
// =============================================================================

// Author is the public profile attached to questions and answers.
type Author struct {
	Name       string `json:"name"`
	Initials   string `json:"initials,omitempty"`
	Reputation int    `json:"reputation,omitempty"`
}

// Question is a board question. List endpoints return it without Body and
// Answers; the detail endpoint fills both in.
type Question struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body,omitempty"`
	Votes       int      `json:"votes"`
	AnswerCount int      `json:"answers"`
	Views       int      `json:"views"`
	Tags        []string `json:"tags"`
	Author      Author   `json:"user"`
	Accepted    bool     `json:"accepted,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// AnswerList is only populated on the detail endpoint.
	AnswerList []Answer `json:"answerList,omitempty"`
}

// Answer is a single answer on a question detail page.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Content    string    `json:"content"`
	Votes      int       `json:"votes"`
	Accepted   bool      `json:"accepted"`
	Author     Author    `json:"user"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QuestionDraft is the payload for creating a question.
type QuestionDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	MemberID    int64    `json:"mbrId,omitempty"`
}

// =============================================================================
// POINT SHOP
// =============================================================================

// Coupon is a point-shop item redeemable for points.
type Coupon struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
}

// =============================================================================
// SIGNUP
// =============================================================================

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}
