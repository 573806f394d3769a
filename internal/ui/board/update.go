// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/session"
	"github.com/jeranaias/qna-tui/internal/ui/components"
)

// Update is the single message pump for the board.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailView.Width = msg.Width - 4
		m.detailView.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		// Every keystroke is session activity, debounced downstream.
		m.mgr.RecordActivity()
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.mgr.RecordActivity()
		if m.view == ViewDetail {
			var cmd tea.Cmd
			m.detailView, cmd = m.detailView.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.shopLoading || m.loggingIn || m.postingAnswer {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	// --- session machinery -------------------------------------------------

	case session.TickMsg:
		return m, m.mgr.HandleTick()

	case session.WarningMsg:
		m.warning.Show(msg.Remaining)
		return m, components.CountdownTickCmd()

	case components.CountdownTickMsg:
		if m.warning.Visible() && m.mgr.LoggedIn() {
			m.warning.SetRemaining(m.mgr.Remaining())
			return m, components.CountdownTickCmd()
		}
		m.warning.Hide()
		return m, nil

	case session.ExpiredMsg:
		m.handleSessionEnd(msg.Reason)
		return m, nil

	case sessionEndedMsg:
		m.handleSessionEnd(msg.reason)
		return m, m.waitForLogoutCmd()

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	// --- async results -----------------------------------------------------

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case logoutDoneMsg:
		// The logged-out callback drives the view change.
		return m, m.purgeCacheCmd()

	case extendDoneMsg:
		if msg.err != nil {
			// A failed extension already forced logout; the login view
			// arrives via the teardown channel.
			return m, nil
		}
		m.warning.Hide()
		m.toasts.AddSuccess("Session extended")
		return m, nil

	case questionsMsg:
		m.loading = false
		if msg.err != nil {
			m.errToast(msg.err, "Could not load questions")
			return m, nil
		}
		m.questions = msg.questions
		m.listStale = msg.stale
		m.listFetchedAt = msg.fetchedAt
		if m.cursor >= len(m.questions) {
			m.cursor = 0
		}
		return m, nil

	case questionMsg:
		m.loading = false
		if msg.err != nil {
			m.errToast(msg.err, "Could not load question")
			return m, nil
		}
		m.question = msg.question
		m.detailStale = msg.stale
		m.answerCursor = 0
		m.refreshDetail()
		return m, nil

	case questionPostedMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not post question")
			return m, nil
		}
		if msg.edited {
			m.toasts.AddSuccess("Question updated")
		} else {
			m.toasts.AddSuccess("Question posted")
		}
		m.resetAskForm()
		m.view = ViewQuestions
		m.loading = true
		return m, m.loadQuestionsCmd()

	case questionDeletedMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not delete question")
			return m, nil
		}
		m.toasts.AddStatus("Question deleted")
		m.question = nil
		m.view = ViewQuestions
		m.loading = true
		return m, m.loadQuestionsCmd()

	case answerPostedMsg:
		m.postingAnswer = false
		if msg.err != nil {
			m.errToast(msg.err, "Could not post answer")
			return m, nil
		}
		m.toasts.AddSuccess("Answer posted")
		m.answerMode = false
		m.answerInput.Reset()
		m.answerInput.Blur()
		if m.question != nil {
			return m, m.loadQuestionCmd(m.question.ID)
		}
		return m, nil

	case answerDeletedMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not delete answer")
			return m, nil
		}
		m.toasts.AddStatus("Answer deleted")
		if m.question != nil {
			return m, m.loadQuestionCmd(m.question.ID)
		}
		return m, nil

	case voteMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Vote failed")
			return m, nil
		}
		if m.question != nil && m.question.ID == msg.questionID {
			m.question.Votes = msg.votes
			m.refreshDetail()
		}
		for i := range m.questions {
			if m.questions[i].ID == msg.questionID {
				m.questions[i].Votes = msg.votes
			}
		}
		return m, nil

	case acceptMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not accept answer")
			return m, nil
		}
		m.toasts.AddSuccess("Answer accepted")
		if m.question != nil {
			return m, m.loadQuestionCmd(m.question.ID)
		}
		return m, nil

	case couponsMsg:
		m.shopLoading = false
		if msg.err != nil {
			m.errToast(msg.err, "Could not load the point shop")
			return m, nil
		}
		m.coupons = msg.coupons
		m.points = msg.points
		if m.shopCursor >= len(m.coupons) {
			m.shopCursor = 0
		}
		return m, nil

	case couponUsedMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not redeem coupon")
			return m, nil
		}
		m.points = msg.result.Point
		m.mgr.UpdateUserPoints(msg.result.Point)
		if msg.result.Message != "" {
			m.toasts.AddSuccess(msg.result.Message)
		} else {
			m.toasts.AddSuccess("Coupon redeemed")
		}
		return m, nil

	case checkIDMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Could not check ID availability")
			return m, nil
		}
		// Ignore the probe if the field changed while it was in flight.
		if msg.userID != strings.TrimSpace(m.signupInputs[0].Value()) {
			return m, nil
		}
		if msg.available {
			m.idAvailable = "free"
		} else {
			m.idAvailable = "taken"
		}
		return m, nil

	case signupDoneMsg:
		if msg.err != nil {
			var apiErr *api.APIError
			if errors.As(msg.err, &apiErr) {
				m.signupErr = apiErr.Message
			} else {
				m.errToast(msg.err, "Signup failed")
			}
			return m, nil
		}
		m.toasts.AddSuccess("Account created, sign in to continue")
		m.resetSignupForm()
		m.view = ViewLogin
		m.loginInputs[0].Focus()
		return m, nil

	case userSearchMsg:
		if msg.err != nil {
			m.errToast(msg.err, "Search failed")
			return m, nil
		}
		m.searchResults = msg.results
		m.searchDone = true
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// The warning dialog is modal: while visible it owns the keyboard.
	if m.warning.Visible() {
		return m.handleWarningKey(msg)
	}

	switch m.view {
	case ViewLogin:
		return m.updateLogin(msg)
	case ViewSignup:
		return m.updateSignup(msg)
	case ViewQuestions:
		return m.updateQuestions(msg)
	case ViewDetail:
		return m.updateDetail(msg)
	case ViewAsk:
		return m.updateAsk(msg)
	case ViewPointShop:
		return m.updateShop(msg)
	}
	return m, nil
}

// handleWarningKey collects the two-exit choice from the timeout dialog.
func (m *Model) handleWarningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		m.warning.Toggle()
		return m, nil
	case "enter":
		if m.warning.Selected() == components.ChoiceStay {
			return m, m.extendCmd()
		}
		m.warning.Hide()
		return m, m.logoutCmd()
	case "esc":
		// Dismissing counts as staying: the keystroke already reset the
		// idle clock, the dialog clears on the next countdown tick.
		return m, m.extendCmd()
	}
	return m, nil
}

// =============================================================================
// LOGIN
// =============================================================================

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focusLogin((m.loginFocus + 1) % len(m.loginInputs))
		return m, nil
	case "shift+tab", "up":
		m.focusLogin((m.loginFocus + len(m.loginInputs) - 1) % len(m.loginInputs))
		return m, nil
	case "ctrl+n":
		m.view = ViewSignup
		m.focusSignup(0)
		return m, nil
	case "enter":
		if m.loginFocus == 0 {
			m.focusLogin(1)
			return m, nil
		}
		userID := strings.TrimSpace(m.loginInputs[0].Value())
		password := m.loginInputs[1].Value()
		if userID == "" || password == "" {
			m.loginErr = "user ID and password are required"
			return m, nil
		}
		m.loginErr = ""
		m.loggingIn = true
		return m, tea.Batch(m.loginCmd(userID, password), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusLogin(i int) {
	m.loginFocus = i
	for j := range m.loginInputs {
		if j == i {
			m.loginInputs[j].Focus()
		} else {
			m.loginInputs[j].Blur()
		}
	}
}

func (m *Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, api.ErrLoginFailed):
			m.loginErr = "invalid user ID or password"
		case errors.Is(msg.err, api.ErrTimeout):
			m.loginErr = "the server did not respond in time"
		default:
			m.loginErr = "login failed, try again"
		}
		return m, nil
	}

	m.loginInputs[0].Reset()
	m.loginInputs[1].Reset()
	m.loginErr = ""
	m.expiredNotice = ""

	// Resume where a failed navigation left off, default to the board.
	target := ViewQuestions
	if v, ok := viewByName(m.returnView); ok && v != ViewLogin && v != ViewSignup {
		target = v
	}
	m.returnView = ""

	switch target {
	case ViewPointShop:
		m.view = ViewPointShop
		m.shopLoading = true
		return m, tea.Batch(m.loadShopCmd(m.memberID()), m.spinner.Tick)
	case ViewAsk:
		m.view = ViewAsk
		m.focusAsk(0)
		return m, nil
	default:
		m.view = ViewQuestions
		m.loading = true
		return m, tea.Batch(m.loadQuestionsCmd(), m.spinner.Tick)
	}
}

// handleSessionEnd routes any teardown to the login view. Multiple expiry
// paths can report the same teardown; the second arrival finds the work done.
func (m *Model) handleSessionEnd(reason session.LogoutReason) {
	m.warning.Hide()

	if m.view == ViewLogin {
		if reason.Expiry() {
			m.expiredNotice = reason.String()
		}
		return
	}

	m.questions = nil
	m.question = nil
	m.coupons = nil
	m.answerMode = false
	m.answerInput.Reset()
	m.resetAskForm()

	if reason.Expiry() {
		m.expiredNotice = reason.String()
	} else {
		m.expiredNotice = ""
		if reason == session.ReasonExternal {
			m.toasts.AddStatus("Logged out in another window")
		}
	}
	m.returnView, _ = m.store.TakeReturnView()

	m.view = ViewLogin
	m.loginErr = ""
	m.focusLogin(0)
}

// =============================================================================
// QUESTIONS
// =============================================================================

func (m *Model) updateQuestions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.questions)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Select):
		if len(m.questions) == 0 {
			return m, nil
		}
		q := m.questions[m.cursor]
		m.view = ViewDetail
		m.loading = true
		return m, tea.Batch(
			m.loadQuestionCmd(q.ID),
			m.validateNavCmd(viewNames[ViewDetail]),
			m.spinner.Tick,
		)
	case key.Matches(msg, m.keyMap.Ask):
		m.view = ViewAsk
		m.editID = 0
		m.focusAsk(0)
		return m, m.validateNavCmd(viewNames[ViewAsk])
	case key.Matches(msg, m.keyMap.Shop):
		m.view = ViewPointShop
		m.shopLoading = true
		return m, tea.Batch(
			m.loadShopCmd(m.memberID()),
			m.validateNavCmd(viewNames[ViewPointShop]),
			m.spinner.Tick,
		)
	case key.Matches(msg, m.keyMap.Refresh):
		m.loading = true
		return m, tea.Batch(m.loadQuestionsCmd(), m.spinner.Tick)
	case key.Matches(msg, m.keyMap.Search):
		m.searchMode = true
		m.searchDone = false
		m.searchResults = nil
		m.searchInput.Reset()
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keyMap.Logout):
		return m, m.logoutCmd()
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchDone = false
		return m, m.searchUsersCmd(query)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// =============================================================================
// DETAIL
// =============================================================================

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.answerMode {
		switch msg.String() {
		case "esc":
			m.answerMode = false
			m.answerInput.Blur()
			return m, nil
		case "enter":
			content := strings.TrimSpace(m.answerInput.Value())
			if content == "" || m.question == nil {
				return m, nil
			}
			m.postingAnswer = true
			return m, tea.Batch(
				m.postAnswerCmd(m.question.ID, content, m.memberID()),
				m.spinner.Tick,
			)
		}
		var cmd tea.Cmd
		m.answerInput, cmd = m.answerInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.view = ViewQuestions
		m.question = nil
		return m, m.validateNavCmd(viewNames[ViewQuestions])
	case key.Matches(msg, m.keyMap.Answer):
		m.answerMode = true
		m.answerInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keyMap.VoteUp):
		if m.question != nil {
			return m, m.voteCmd(m.question.ID, 1)
		}
		return m, nil
	case key.Matches(msg, m.keyMap.VoteDn):
		if m.question != nil {
			return m, m.voteCmd(m.question.ID, -1)
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Next):
		if m.question != nil && len(m.question.AnswerList) > 0 {
			m.answerCursor = (m.answerCursor + 1) % len(m.question.AnswerList)
			m.refreshDetail()
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Accept):
		// Only the question author accepts.
		if m.question != nil && m.question.Author.Name == m.userName() &&
			m.answerCursor < len(m.question.AnswerList) {
			a := m.question.AnswerList[m.answerCursor]
			return m, m.acceptCmd(m.question.ID, a.ID)
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Edit):
		if m.question != nil && m.question.Author.Name == m.userName() {
			m.editID = m.question.ID
			m.askInputs[0].SetValue(m.question.Title)
			m.askInputs[1].SetValue(m.question.Description)
			m.askInputs[2].SetValue(strings.Join(m.question.Tags, ", "))
			m.view = ViewAsk
			m.focusAsk(0)
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Delete):
		if m.question == nil {
			return m, nil
		}
		// D deletes the selected answer when one is highlighted and owned,
		// otherwise the question itself when owned.
		if m.answerCursor < len(m.question.AnswerList) {
			a := m.question.AnswerList[m.answerCursor]
			if a.Author.Name == m.userName() {
				return m, m.deleteAnswerCmd(m.question.ID, a.ID)
			}
		}
		if m.question.Author.Name == m.userName() {
			return m, m.deleteQuestionCmd(m.question.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

// =============================================================================
// ASK / EDIT
// =============================================================================

func (m *Model) updateAsk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetAskForm()
		m.view = ViewQuestions
		return m, nil
	case "tab", "down":
		m.focusAsk((m.askFocus + 1) % len(m.askInputs))
		return m, nil
	case "shift+tab", "up":
		m.focusAsk((m.askFocus + len(m.askInputs) - 1) % len(m.askInputs))
		return m, nil
	case "ctrl+s":
		title := strings.TrimSpace(m.askInputs[0].Value())
		desc := strings.TrimSpace(m.askInputs[1].Value())
		if title == "" || desc == "" {
			m.askErr = "title and description are required"
			return m, nil
		}
		m.askErr = ""
		draft := model.QuestionDraft{
			Title:       title,
			Description: desc,
			Tags:        splitTags(m.askInputs[2].Value()),
			MemberID:    m.memberID(),
		}
		return m, m.postQuestionCmd(m.editID, draft)
	}

	var cmd tea.Cmd
	m.askInputs[m.askFocus], cmd = m.askInputs[m.askFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusAsk(i int) {
	m.askFocus = i
	for j := range m.askInputs {
		if j == i {
			m.askInputs[j].Focus()
		} else {
			m.askInputs[j].Blur()
		}
	}
}

func (m *Model) resetAskForm() {
	for i := range m.askInputs {
		m.askInputs[i].Reset()
		m.askInputs[i].Blur()
	}
	m.askFocus = 0
	m.askErr = ""
	m.editID = 0
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// =============================================================================
// SIGNUP
// =============================================================================

func (m *Model) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetSignupForm()
		m.view = ViewLogin
		m.focusLogin(0)
		return m, nil
	case "tab", "down", "shift+tab", "up":
		next := (m.signupFocus + 1) % len(m.signupInputs)
		if msg.String() == "shift+tab" || msg.String() == "up" {
			next = (m.signupFocus + len(m.signupInputs) - 1) % len(m.signupInputs)
		}
		var cmd tea.Cmd
		// Leaving the user-ID field triggers the availability probe.
		if m.signupFocus == 0 {
			if id := strings.TrimSpace(m.signupInputs[0].Value()); id != "" {
				m.idAvailable = ""
				cmd = m.checkIDCmd(id)
			}
		}
		m.focusSignup(next)
		return m, cmd
	case "enter", "ctrl+s":
		if msg.String() == "enter" && m.signupFocus < len(m.signupInputs)-1 {
			m.focusSignup(m.signupFocus + 1)
			return m, nil
		}
		userID := strings.TrimSpace(m.signupInputs[0].Value())
		password := m.signupInputs[1].Value()
		name := strings.TrimSpace(m.signupInputs[2].Value())
		if userID == "" || password == "" || name == "" {
			m.signupErr = "user ID, password, and name are required"
			return m, nil
		}
		if m.idAvailable == "taken" {
			m.signupErr = "that user ID is taken"
			return m, nil
		}
		m.signupErr = ""
		return m, m.signupCmd(model.SignupRequest{
			UserID:   userID,
			Password: password,
			Name:     name,
			Email:    strings.TrimSpace(m.signupInputs[3].Value()),
		})
	}

	var cmd tea.Cmd
	m.signupInputs[m.signupFocus], cmd = m.signupInputs[m.signupFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusSignup(i int) {
	m.signupFocus = i
	for j := range m.signupInputs {
		if j == i {
			m.signupInputs[j].Focus()
		} else {
			m.signupInputs[j].Blur()
		}
	}
}

func (m *Model) resetSignupForm() {
	for i := range m.signupInputs {
		m.signupInputs[i].Reset()
		m.signupInputs[i].Blur()
	}
	m.signupFocus = 0
	m.signupErr = ""
	m.idAvailable = ""
}

// =============================================================================
// POINT SHOP
// =============================================================================

func (m *Model) updateShop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.view = ViewQuestions
		return m, m.validateNavCmd(viewNames[ViewQuestions])
	case key.Matches(msg, m.keyMap.Up):
		if m.shopCursor > 0 {
			m.shopCursor--
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		if m.shopCursor < len(m.coupons)-1 {
			m.shopCursor++
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Refresh):
		m.shopLoading = true
		return m, tea.Batch(m.loadShopCmd(m.memberID()), m.spinner.Tick)
	case key.Matches(msg, m.keyMap.Select):
		if m.shopCursor >= len(m.coupons) {
			return m, nil
		}
		c := m.coupons[m.shopCursor]
		if c.Points > m.points {
			m.toasts.AddError("Not enough points for " + c.Name)
			return m, nil
		}
		return m, m.useCouponCmd(c.Code, m.memberID())
	}
	return m, nil
}

// errToast surfaces a backend failure without blocking the board. A 401 is
// never toasted here; the session teardown already owns that path.
func (m *Model) errToast(err error, fallback string) {
	if errors.Is(err, api.ErrSessionExpired) {
		return
	}
	if errors.Is(err, api.ErrTimeout) {
		m.toasts.AddError(fallback + ": request timed out")
		return
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		m.toasts.AddError(apiErr.Message)
		return
	}
	m.toasts.AddError(fallback)
}
