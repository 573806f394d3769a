// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/ui/components"
	"github.com/jeranaias/qna-tui/internal/ui/styles"
	"github.com/jeranaias/qna-tui/internal/util"
)

// View renders the active screen with the dialog and toast overlays on top.
func (m *Model) View() string {
	var content string
	switch m.view {
	case ViewLogin:
		content = m.viewLogin()
	case ViewSignup:
		content = m.viewSignup()
	case ViewQuestions:
		content = m.viewQuestions()
	case ViewDetail:
		content = m.viewDetail()
	case ViewAsk:
		content = m.viewAsk()
	case ViewPointShop:
		content = m.viewShop()
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		content,
		m.statusBar(),
	)

	// The timeout dialog is modal and replaces the screen body.
	if m.warning.Visible() {
		return m.warning.Render(m.theme, m.width, m.height)
	}
	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.Tick(), m.width, 0)
		if stack != "" {
			return lipgloss.JoinVertical(lipgloss.Left, screen, stack)
		}
	}
	return screen
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) header() string {
	brand := m.theme.HeaderBrand.Render("qna")
	title := m.theme.Header.Render(m.viewTitle())

	var right string
	if u := m.mgr.User(); u != nil {
		right = m.theme.QuestionMeta.Render(fmt.Sprintf("%s · %s pts · %s left",
			u.UserID, util.FormatCount(u.Points), util.FormatDuration(m.mgr.Remaining())))
	}

	left := brand + " " + title
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) viewTitle() string {
	switch m.view {
	case ViewLogin:
		return "Sign in"
	case ViewSignup:
		return "Create account"
	case ViewQuestions:
		return "Questions"
	case ViewDetail:
		return "Question"
	case ViewAsk:
		if m.editID != 0 {
			return "Edit question"
		}
		return "Ask a question"
	case ViewPointShop:
		return "Point shop"
	}
	return ""
}

func (m *Model) statusBar() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp(m.view) {
		h := b.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.Muted.Render(h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  ·  "))
}

// staleLine renders the offline notice above cached content.
func (m *Model) staleLine() string {
	return m.theme.StaleNotice.Render(
		"⚠ offline — showing cached content from " + util.FormatRelativeTime(m.listFetchedAt, time.Now()))
}

// =============================================================================
// LOGIN & SIGNUP
// =============================================================================

func (m *Model) viewLogin() string {
	var b strings.Builder

	if m.expiredNotice != "" {
		b.WriteString(m.theme.ExpiredNotice.Render(
			styles.StatusIndicators.Warning + " Your session has expired. Please sign in again."))
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("(" + m.expiredNotice + ")"))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.Label.Render("User ID"))
	b.WriteString("\n" + m.loginInputs[0].View() + "\n\n")
	b.WriteString(m.theme.Label.Render("Password"))
	b.WriteString("\n" + m.loginInputs[1].View() + "\n")

	if m.loginErr != "" {
		b.WriteString("\n" + m.theme.FieldError.Render(styles.StatusIndicators.Error+" "+m.loginErr) + "\n")
	}
	if m.loggingIn {
		b.WriteString("\n" + m.spinner.View() + " signing in…\n")
	}
	if m.returnView != "" {
		b.WriteString("\n" + m.theme.Muted.Render("You will be returned to: "+m.returnView) + "\n")
	}
	b.WriteString("\n" + m.theme.Muted.Render("Enter sign in · C-n create account · C-c quit"))

	return m.centered(b.String())
}

func (m *Model) viewSignup() string {
	labels := []string{"User ID", "Password", "Display name", "Email"}
	var b strings.Builder
	for i, in := range m.signupInputs {
		b.WriteString(m.theme.Label.Render(labels[i]))
		if i == 0 {
			switch m.idAvailable {
			case "free":
				b.WriteString("  " + m.theme.AcceptedMark.Render(styles.StatusIndicators.Success+" available"))
			case "taken":
				b.WriteString("  " + m.theme.FieldError.Render(styles.StatusIndicators.Error+" taken"))
			}
		}
		b.WriteString("\n" + in.View() + "\n\n")
	}
	if m.signupErr != "" {
		b.WriteString(m.theme.FieldError.Render(styles.StatusIndicators.Error+" "+m.signupErr) + "\n")
	}
	b.WriteString(m.theme.Muted.Render("Tab next field · C-s create · Esc back"))
	return m.centered(b.String())
}

// =============================================================================
// QUESTIONS
// =============================================================================

func (m *Model) viewQuestions() string {
	var b strings.Builder

	if m.listStale {
		b.WriteString(m.staleLine() + "\n\n")
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " loading questions…\n")
		return b.String()
	}
	if len(m.questions) == 0 {
		b.WriteString(m.theme.Muted.Render("No questions yet. Press a to ask the first one."))
		return b.String()
	}

	visible := m.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.questions) && i < start+visible; i++ {
		q := m.questions[i]
		b.WriteString(m.renderQuestionRow(q, i == m.cursor))
		b.WriteString("\n")
	}

	if m.searchMode {
		b.WriteString("\n" + m.renderSearch())
	}
	return b.String()
}

func (m *Model) renderQuestionRow(q model.Question, selected bool) string {
	// Title gets one line; CJK-aware truncation keeps the ✓ mark visible.
	t := util.TruncateWidth(q.Title, m.width-6)
	title := m.theme.QuestionTitle.Render(t)
	marker := "  "
	if selected {
		title = m.theme.QuestionSelected.Render(t)
		marker = m.theme.QuestionSelected.Render("› ")
	}

	accepted := ""
	if q.Accepted {
		accepted = " " + m.theme.AcceptedMark.Render(styles.StatusIndicators.Success)
	}

	meta := m.theme.QuestionMeta.Render(fmt.Sprintf("  %s votes · %s answers · %s views · %s · %s",
		util.FormatCount(q.Votes), util.FormatCount(q.AnswerCount), util.FormatCount(q.Views),
		q.Author.Name, util.FormatRelativeTime(q.CreatedAt, time.Now())))

	var tags string
	for _, t := range q.Tags {
		tags += " " + m.theme.TagBadge.Render(t)
	}

	return marker + title + accepted + "\n " + meta + tags
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.theme.Label.Render("Search users: ") + m.searchInput.View() + "\n")
	if m.searchDone {
		if len(m.searchResults) == 0 {
			b.WriteString(m.theme.Muted.Render("no matches") + "\n")
		}
		for _, u := range m.searchResults {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				m.theme.QuestionTitle.Render(u.Name),
				m.theme.QuestionMeta.Render(util.FormatCount(u.Reputation)+" rep")))
		}
	}
	return b.String()
}

// =============================================================================
// DETAIL
// =============================================================================

// refreshDetail rebuilds the viewport content after the question, its votes,
// or the answer selection change.
func (m *Model) refreshDetail() {
	if m.question == nil {
		return
	}
	m.detailView.SetContent(m.renderDetailContent(m.question))
}

func (m *Model) viewDetail() string {
	if m.loading || m.question == nil {
		return m.spinner.View() + " loading question…"
	}

	var b strings.Builder
	if m.detailStale {
		b.WriteString(m.staleLine() + "\n")
	}
	b.WriteString(m.detailView.View())

	if m.answerMode {
		b.WriteString("\n\n" + m.theme.Label.Render("Your answer") + "\n" + m.answerInput.View())
		if m.postingAnswer {
			b.WriteString("\n" + m.spinner.View() + " posting…")
		} else {
			b.WriteString("\n" + m.theme.Muted.Render("Enter post · Esc cancel"))
		}
	}
	return b.String()
}

func (m *Model) renderDetailContent(q *model.Question) string {
	var b strings.Builder

	b.WriteString(m.theme.QuestionSelected.Render(q.Title) + "\n")
	b.WriteString(m.theme.QuestionMeta.Render(fmt.Sprintf("%s · asked %s · %s views",
		q.Author.Name, util.FormatRelativeTime(q.CreatedAt, time.Now()), util.FormatCount(q.Views))))
	b.WriteString("\n")
	b.WriteString(m.theme.VoteCount.Render(fmt.Sprintf("▲ %s", util.FormatCount(q.Votes))))
	for _, t := range q.Tags {
		b.WriteString(" " + m.theme.TagBadge.Render(t))
	}
	b.WriteString("\n\n")

	body := q.Body
	if body == "" {
		body = q.Description
	}
	b.WriteString(m.renderMarkdown(body))
	b.WriteString("\n\n")

	if len(q.AnswerList) == 0 {
		b.WriteString(m.theme.Muted.Render("No answers yet. Press a to write one."))
		return b.String()
	}

	b.WriteString(m.theme.Label.Render(fmt.Sprintf("%s answers", util.FormatCount(len(q.AnswerList)))))
	b.WriteString("\n\n")
	for i, a := range q.AnswerList {
		b.WriteString(m.renderAnswer(a, i == m.answerCursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderAnswer(a model.Answer, selected bool) string {
	var b strings.Builder

	head := fmt.Sprintf("%s · %s · ▲ %s",
		a.Author.Name, util.FormatRelativeTime(a.CreatedAt, time.Now()), util.FormatCount(a.Votes))
	if a.Accepted {
		head = styles.StatusIndicators.Success + " accepted · " + head
	}
	if selected {
		b.WriteString(m.theme.QuestionSelected.Render("› " + head))
	} else {
		b.WriteString(m.theme.QuestionMeta.Render("  " + head))
	}
	b.WriteString("\n")
	b.WriteString(renderAnswerBody(a.Content, m.width-6))
	b.WriteString("\n")
	return b.String()
}

// renderAnswerBody renders answer text, highlighting fenced code blocks.
func renderAnswerBody(content string, width int) string {
	if width < 24 {
		width = 24
	}
	var b strings.Builder
	rest := content
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			b.WriteString(strings.TrimSpace(rest))
			break
		}
		b.WriteString(strings.TrimSpace(rest[:start]))

		tail := rest[start+3:]
		end := strings.Index(tail, "```")
		if end < 0 {
			b.WriteString(strings.TrimSpace(rest[start:]))
			break
		}

		fence := tail[:end]
		lang := ""
		if nl := strings.IndexByte(fence, '\n'); nl >= 0 {
			lang = strings.TrimSpace(fence[:nl])
			fence = fence[nl+1:]
		}
		block := components.CodeBlock{Language: lang, Code: fence, MaxWidth: width}
		b.WriteString("\n" + block.Render() + "\n")

		rest = tail[end+3:]
	}
	return b.String()
}

// renderMarkdown renders a question body through glamour, falling back to the
// raw text when the renderer is unavailable.
func (m *Model) renderMarkdown(body string) string {
	if m.markdown == nil {
		return body
	}
	out, err := m.markdown.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimSpace(out)
}

// =============================================================================
// ASK & SHOP
// =============================================================================

func (m *Model) viewAsk() string {
	labels := []string{"Title", "Description", "Tags"}
	var b strings.Builder
	for i, in := range m.askInputs {
		b.WriteString(m.theme.Label.Render(labels[i]))
		b.WriteString("\n" + in.View() + "\n\n")
	}
	if m.askErr != "" {
		b.WriteString(m.theme.FieldError.Render(styles.StatusIndicators.Error+" "+m.askErr) + "\n")
	}
	b.WriteString(m.theme.Muted.Render("Tab next field · C-s submit · Esc back"))
	return m.centered(b.String())
}

func (m *Model) viewShop() string {
	var b strings.Builder

	b.WriteString(m.theme.Label.Render("Your points: ") +
		m.theme.VoteCount.Render(util.FormatCount(m.points)) + "\n\n")

	if m.shopLoading {
		b.WriteString(m.spinner.View() + " loading coupons…")
		return b.String()
	}
	if len(m.coupons) == 0 {
		b.WriteString(m.theme.Muted.Render("The shop is empty right now."))
		return b.String()
	}

	for i, c := range m.coupons {
		line := fmt.Sprintf("%s · %s pts", c.Name, util.FormatCount(c.Points))
		if i == m.shopCursor {
			b.WriteString(m.theme.QuestionSelected.Render("› "+line) + "\n")
		} else if c.Points > m.points {
			b.WriteString(m.theme.Muted.Render("  "+line) + "\n")
		} else {
			b.WriteString(m.theme.QuestionTitle.Render("  "+line) + "\n")
		}
		if c.Description != "" {
			b.WriteString(m.theme.QuestionMeta.Render("    "+c.Description) + "\n")
		}
	}
	return b.String()
}

// centered places form content in the middle of the working area.
func (m *Model) centered(content string) string {
	h := m.height - 4
	if h < 1 {
		return content
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, content)
}
