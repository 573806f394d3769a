// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"time"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/session"
)

// =============================================================================
// ASYNC RESULT MESSAGES
// =============================================================================

// questionsMsg carries the board listing. Stale is true when the backend was
// unreachable and the payload came from the local cache.
type questionsMsg struct {
	questions []model.Question
	fetchedAt time.Time
	stale     bool
	err       error
}

// questionMsg carries one question detail, possibly from cache.
type questionMsg struct {
	question  *model.Question
	fetchedAt time.Time
	stale     bool
	err       error
}

// loginDoneMsg reports the outcome of a login attempt.
type loginDoneMsg struct {
	err error
}

// logoutDoneMsg reports that a user-requested logout finished.
type logoutDoneMsg struct{}

// extendDoneMsg reports the outcome of a session extension.
type extendDoneMsg struct {
	err error
}

// sessionEndedMsg is delivered when the session manager tears the session
// down from outside the tea loop: a 401, a failed revalidation, or a logout
// observed from another process.
type sessionEndedMsg struct {
	reason session.LogoutReason
}

// questionPostedMsg reports a created or edited question.
type questionPostedMsg struct {
	question *model.Question
	edited   bool
	err      error
}

// questionDeletedMsg reports a question removal.
type questionDeletedMsg struct {
	id  int64
	err error
}

// answerPostedMsg reports a created answer.
type answerPostedMsg struct {
	answer *model.Answer
	err    error
}

// answerDeletedMsg reports an answer removal.
type answerDeletedMsg struct {
	answerID int64
	err      error
}

// voteMsg carries the new vote total after an up or down vote.
type voteMsg struct {
	questionID int64
	votes      int
	err        error
}

// acceptMsg reports an answer acceptance.
type acceptMsg struct {
	answerID int64
	err      error
}

// couponsMsg carries the point-shop catalog and the member's balance.
type couponsMsg struct {
	coupons []model.Coupon
	points  int
	err     error
}

// couponUsedMsg reports a coupon redemption.
type couponUsedMsg struct {
	result *api.CouponUseResult
	err    error
}

// checkIDMsg reports a signup user-ID availability probe.
type checkIDMsg struct {
	userID    string
	available bool
	err       error
}

// signupDoneMsg reports the outcome of account creation.
type signupDoneMsg struct {
	err error
}

// userSearchMsg carries member-search results.
type userSearchMsg struct {
	query   string
	results []model.Author
	err     error
}
