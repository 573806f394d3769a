// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
)

// reqCtx returns a context bounded by the client's fixed request deadline.
func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), api.RequestTimeout)
}

// =============================================================================
// QUESTIONS
// =============================================================================

// loadQuestionsCmd fetches the board listing, falling back to the local cache
// when the backend is unreachable. Cache content is served marked stale; it
// never masks a reachable backend.
func (m *Model) loadQuestionsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		questions, err := m.client.ListQuestions(ctx)
		if err == nil {
			if m.cache != nil {
				_ = m.cache.PutListing(questions)
			}
			return questionsMsg{questions: questions, fetchedAt: time.Now()}
		}

		if m.cache != nil {
			cached, fetchedAt, cerr := m.cache.GetListing()
			if cerr == nil {
				return questionsMsg{questions: cached, fetchedAt: fetchedAt, stale: true}
			}
		}
		return questionsMsg{err: err}
	}
}

// loadQuestionCmd fetches one question detail with the same cache fallback.
func (m *Model) loadQuestionCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		q, err := m.client.GetQuestion(ctx, id)
		if err == nil {
			if m.cache != nil {
				_ = m.cache.PutQuestion(q)
			}
			return questionMsg{question: q, fetchedAt: time.Now()}
		}

		if m.cache != nil {
			cached, fetchedAt, cerr := m.cache.GetQuestion(id)
			if cerr == nil {
				return questionMsg{question: cached, fetchedAt: fetchedAt, stale: true}
			}
		}
		return questionMsg{err: err}
	}
}

// postQuestionCmd creates or edits a question.
func (m *Model) postQuestionCmd(editID int64, draft model.QuestionDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		if editID != 0 {
			err := m.client.EditQuestion(ctx, editID, draft)
			return questionPostedMsg{edited: true, err: err}
		}
		q, err := m.client.CreateQuestion(ctx, draft)
		return questionPostedMsg{question: q, err: err}
	}
}

// deleteQuestionCmd removes a question.
func (m *Model) deleteQuestionCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return questionDeletedMsg{id: id, err: m.client.DeleteQuestion(ctx, id)}
	}
}

// postAnswerCmd creates an answer on the open question.
func (m *Model) postAnswerCmd(questionID int64, content string, memberID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		a, err := m.client.CreateAnswer(ctx, questionID, content, memberID)
		return answerPostedMsg{answer: a, err: err}
	}
}

// deleteAnswerCmd removes an answer.
func (m *Model) deleteAnswerCmd(questionID, answerID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return answerDeletedMsg{answerID: answerID, err: m.client.DeleteAnswer(ctx, questionID, answerID)}
	}
}

// voteCmd casts an up or down vote.
func (m *Model) voteCmd(questionID int64, delta int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		votes, err := m.client.VoteQuestion(ctx, questionID, delta)
		return voteMsg{questionID: questionID, votes: votes, err: err}
	}
}

// acceptCmd marks an answer as accepted.
func (m *Model) acceptCmd(questionID, answerID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return acceptMsg{answerID: answerID, err: m.client.AcceptAnswer(ctx, questionID, answerID)}
	}
}

// =============================================================================
// SESSION
// =============================================================================

// loginCmd authenticates through the session manager.
func (m *Model) loginCmd(userID, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return loginDoneMsg{err: m.mgr.Login(ctx, userID, password)}
	}
}

// logoutCmd ends the session at the user's request.
func (m *Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		m.mgr.Logout(ctx)
		return logoutDoneMsg{}
	}
}

// extendCmd pushes the session expiry forward; the "Stay signed in" button.
func (m *Model) extendCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return extendDoneMsg{err: m.mgr.Extend(ctx)}
	}
}

// validateNavCmd revalidates the session on a view change. The manager owns
// the outcome; a dead session surfaces through the logged-out callback.
func (m *Model) validateNavCmd(view string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		m.mgr.ValidateOnNavigate(ctx, view)
		return nil
	}
}

// waitForLogoutCmd blocks on the teardown channel so teardowns that start
// outside the tea loop (401 hook, external logout, failed revalidation)
// still reach the UI.
func (m *Model) waitForLogoutCmd() tea.Cmd {
	return func() tea.Msg {
		reason, ok := <-m.sessionEnded
		if !ok {
			return nil
		}
		return sessionEndedMsg{reason: reason}
	}
}

// =============================================================================
// POINT SHOP / SIGNUP / SEARCH
// =============================================================================

// loadShopCmd fetches the coupon catalog and the member's balance together.
func (m *Model) loadShopCmd(memberID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		coupons, err := m.client.ListCoupons(ctx)
		if err != nil {
			return couponsMsg{err: err}
		}
		points, err := m.client.Points(ctx, memberID)
		if err != nil {
			return couponsMsg{err: err}
		}
		return couponsMsg{coupons: coupons, points: points}
	}
}

// useCouponCmd redeems a coupon.
func (m *Model) useCouponCmd(code string, memberID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		res, err := m.client.UseCoupon(ctx, code, memberID)
		return couponUsedMsg{result: res, err: err}
	}
}

// checkIDCmd probes user-ID availability during signup.
func (m *Model) checkIDCmd(userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		available, err := m.client.CheckID(ctx, userID)
		return checkIDMsg{userID: userID, available: available, err: err}
	}
}

// signupCmd registers a new account.
func (m *Model) signupCmd(req model.SignupRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return signupDoneMsg{err: m.client.Signup(ctx, req)}
	}
}

// searchUsersCmd searches member profiles.
func (m *Model) searchUsersCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		results, err := m.client.SearchUsers(ctx, query)
		return userSearchMsg{query: query, results: results, err: err}
	}
}

// purgeCacheCmd drops cached board content after logout so the next account
// does not see the previous one's listing.
func (m *Model) purgeCacheCmd() tea.Cmd {
	c := m.cache
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		_ = c.Purge()
		return nil
	}
}
