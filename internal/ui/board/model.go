// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/cache"
	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/session"
	"github.com/jeranaias/qna-tui/internal/storage"
	"github.com/jeranaias/qna-tui/internal/ui/components"
	"github.com/jeranaias/qna-tui/internal/ui/styles"
)

// =============================================================================
// VIEWS
// =============================================================================

// View identifies the active screen.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewQuestions
	ViewDetail
	ViewAsk
	ViewPointShop
)

// viewNames are the persisted return-view identifiers: a navigation that
// fails validation records where the user was headed so login can resume
// there.
var viewNames = map[View]string{
	ViewLogin:     "login",
	ViewSignup:    "signup",
	ViewQuestions: "questions",
	ViewDetail:    "question-detail",
	ViewAsk:       "ask-question",
	ViewPointShop: "point-shop",
}

// viewByName is the inverse of viewNames.
func viewByName(name string) (View, bool) {
	for v, n := range viewNames {
		if n == name {
			return v, true
		}
	}
	return ViewLogin, false
}

// =============================================================================
// BOARD MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole board application.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Active view
	view View

	// Backend
	client *api.Client
	mgr    *session.Manager
	store  *storage.Store
	cache  *cache.Cache // nil when the offline cache is disabled

	// Session teardown bridge: the manager's logged-out callback feeds this
	// channel, a waiting command drains it into the tea loop.
	sessionEnded chan session.LogoutReason

	// UI components
	keyMap   KeyMap
	toasts   *components.ToastManager
	warning  *components.WarningDialog
	spinner  spinner.Model
	markdown *glamour.TermRenderer

	// Login view
	loginInputs   [2]textinput.Model // user ID, password
	loginFocus    int
	loggingIn     bool
	loginErr      string
	expiredNotice string
	returnView    string

	// Questions view
	questions     []model.Question
	cursor        int
	listStale     bool
	listFetchedAt time.Time
	loading       bool

	// User search overlay on the questions view
	searchMode    bool
	searchInput   textinput.Model
	searchResults []model.Author
	searchDone    bool

	// Detail view
	question      *model.Question
	detailStale   bool
	detailView    viewport.Model
	answerMode    bool
	answerInput   textinput.Model
	answerCursor  int
	postingAnswer bool

	// Ask / edit view
	askInputs [3]textinput.Model // title, description, tags
	askFocus  int
	askErr    string
	editID    int64 // non-zero when editing an existing question

	// Signup view
	signupInputs [4]textinput.Model // user ID, password, name, email
	signupFocus  int
	signupErr    string
	idAvailable  string // "", "free", "taken"

	// Point shop view
	coupons     []model.Coupon
	points      int
	shopCursor  int
	shopLoading bool
}

// New builds the board model. The cache may be nil.
func New(theme *styles.Theme, client *api.Client, mgr *session.Manager, store *storage.Store, qcache *cache.Cache) *Model {
	m := &Model{
		theme:        theme,
		client:       client,
		mgr:          mgr,
		store:        store,
		cache:        qcache,
		keyMap:       DefaultKeyMap(),
		toasts:       components.NewToastManager(),
		warning:      components.NewWarningDialog(),
		sessionEnded: make(chan session.LogoutReason, 4),
		width:        80,
		height:       24,
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err == nil {
		m.markdown = renderer
	}

	m.loginInputs[0] = newInput("user ID", 64)
	m.loginInputs[1] = newInput("password", 64)
	m.loginInputs[1].EchoMode = textinput.EchoPassword
	m.loginInputs[1].EchoCharacter = '•'
	m.loginInputs[0].Focus()

	m.searchInput = newInput("name or ID", 64)
	m.answerInput = newInput("write an answer…", 2000)

	m.askInputs[0] = newInput("title", 200)
	m.askInputs[1] = newInput("describe your question", 4000)
	m.askInputs[2] = newInput("tags, comma separated", 200)

	m.signupInputs[0] = newInput("user ID", 64)
	m.signupInputs[1] = newInput("password", 64)
	m.signupInputs[1].EchoMode = textinput.EchoPassword
	m.signupInputs[1].EchoCharacter = '•'
	m.signupInputs[2] = newInput("display name", 64)
	m.signupInputs[3] = newInput("email (optional)", 128)

	m.detailView = viewport.New(80, 20)

	// Teardowns can start on goroutines far from the tea loop; the channel
	// send never blocks them.
	mgr.SetLoggedOutCallback(func(reason session.LogoutReason) {
		select {
		case m.sessionEnded <- reason:
		default:
		}
	})

	// A crash or quit mid-session resumes on the board, not the login form.
	if mgr.LoggedIn() {
		m.view = ViewQuestions
		m.loading = true
	} else {
		m.view = ViewLogin
		m.returnView, _ = store.TakeReturnView()
	}

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 48
	return in
}

// Init starts the periodic machinery: the session tick, the toast sweeper,
// the teardown listener, and the initial data load.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		session.TickCmd(m.mgr.CheckInterval()),
		components.ToastTickCmd(),
		m.waitForLogoutCmd(),
	}
	if m.view == ViewQuestions {
		cmds = append(cmds, m.loadQuestionsCmd())
	}
	return tea.Batch(cmds...)
}

// memberID returns the session member ID, or zero when logged out.
func (m *Model) memberID() int64 {
	if u := m.mgr.User(); u != nil {
		return u.MemberID
	}
	return 0
}

// userName returns the session user ID for authorship checks.
func (m *Model) userName() string {
	if u := m.mgr.User(); u != nil {
		return u.UserID
	}
	return ""
}
