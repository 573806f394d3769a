// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jeranaias/qna-tui/internal/model"
)

// Board operations. All of these ride the same client as the session
// operations, so a 401 from any of them fires the expiry hook and tears the
// session down just as a failed validation probe would.

// =============================================================================
// QUESTIONS & ANSWERS
// =============================================================================

// ListQuestions fetches the question board listing.
func (c *Client) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := c.do(ctx, http.MethodGet, "/questions", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetQuestion fetches a single question with its body and answers.
func (c *Client) GetQuestion(ctx context.Context, id int64) (*model.Question, error) {
	var q model.Question
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/questions/%d", id), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestion posts a new question and returns it as the backend stored it.
func (c *Client) CreateQuestion(ctx context.Context, draft model.QuestionDraft) (*model.Question, error) {
	var q model.Question
	if err := c.do(ctx, http.MethodPost, "/questions", draft, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// EditQuestion updates an existing question.
func (c *Client) EditQuestion(ctx context.Context, id int64, draft model.QuestionDraft) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/edit", id), draft, nil)
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/del", id), nil, nil)
}

// answerRequest is the payload for posting an answer.
type answerRequest struct {
	Content  string `json:"content"`
	MemberID int64  `json:"mbrId,omitempty"`
}

// CreateAnswer posts an answer on a question.
func (c *Client) CreateAnswer(ctx context.Context, questionID int64, content string, memberID int64) (*model.Answer, error) {
	var a model.Answer
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/answers", questionID), answerRequest{
		Content:  content,
		MemberID: memberID,
	}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAnswer removes an answer from a question.
func (c *Client) DeleteAnswer(ctx context.Context, questionID, answerID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/answers/%d/del", questionID, answerID), nil, nil)
}

// voteRequest is the payload for voting. Delta is +1 or -1.
type voteRequest struct {
	Delta int `json:"delta"`
}

// VoteQuestion casts an up or down vote and returns the new total.
func (c *Client) VoteQuestion(ctx context.Context, id int64, delta int) (int, error) {
	var resp struct {
		Votes int `json:"votes"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/vote", id), voteRequest{Delta: delta}, &resp); err != nil {
		return 0, err
	}
	return resp.Votes, nil
}

// AcceptAnswer marks an answer as accepted by the question author.
func (c *Client) AcceptAnswer(ctx context.Context, questionID, answerID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/answers/%d/accept", questionID, answerID), nil, nil)
}

// =============================================================================
// USERS & SIGNUP
// =============================================================================

// checkIDResponse is the backend's answer to an availability probe.
type checkIDResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// CheckID asks whether a user ID is free to register.
func (c *Client) CheckID(ctx context.Context, userID string) (bool, error) {
	var resp checkIDResponse
	if err := c.do(ctx, http.MethodPost, "/register/CheckId", map[string]string{
		"userId": userID,
	}, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/register/registerProcess", req, nil)
}

// SearchUsers searches member profiles by name or ID.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.Author, error) {
	var users []model.Author
	path := "/users/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// =============================================================================
// POINT SHOP
// =============================================================================

// pointsResponse wraps the member's point balance.
type pointsResponse struct {
	Point int `json:"point"`
}

// couponUseRequest is the payload for redeeming a coupon.
type couponUseRequest struct {
	CouponCode string `json:"couponCode"`
	MemberID   int64  `json:"mbrId"`
}

// CouponUseResult is the backend's answer to a coupon redemption.
type CouponUseResult struct {
	Message string `json:"message"`
	Point   int    `json:"point"`
}

// ListCoupons fetches the point-shop coupon catalog.
func (c *Client) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := c.do(ctx, http.MethodGet, "/coupons", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// Points fetches the member's current point balance.
func (c *Client) Points(ctx context.Context, memberID int64) (int, error) {
	var resp pointsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/coupons/points/%d", memberID), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Point, nil
}

// UseCoupon redeems a coupon for the member and returns the new balance.
func (c *Client) UseCoupon(ctx context.Context, couponCode string, memberID int64) (*CouponUseResult, error) {
	var resp CouponUseResult
	if err := c.do(ctx, http.MethodPost, "/coupons/use", couponUseRequest{
		CouponCode: couponCode,
		MemberID:   memberID,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
