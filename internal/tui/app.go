package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/auth"
	"github.com/muurk/proxycfg/internal/document"
	"github.com/muurk/proxycfg/internal/logging"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenEditor   Screen = "editor"
	ScreenLogs     Screen = "logs"
)

// private reports whether the screen requires a stored token.
func (s Screen) private() bool {
	return s == ScreenEditor || s == ScreenLogs
}

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
}

// tokenChangedMsg reports a token written by another proxycfg process.
type tokenChangedMsg struct {
	token string
}

// Options are the dependencies shared by every screen.
type Options struct {
	Client        *api.Client
	Session       *auth.Session
	Authenticator *auth.Authenticator

	SortKey        document.SortKey
	LogBufferLimit int
	DownloadDir    string

	// TokenChanges, when set, delivers tokens stored by other processes.
	TokenChanges <-chan string
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	opts Options

	// Screen models
	login       LoginModel
	register    RegisterModel
	editor      EditorModel
	logs        LogModel
	editorReady bool

	// UI state
	Width  int
	Height int
}

// NewAppModel creates the application model. It starts at the editor when
// a token is stored and at the login screen otherwise.
func NewAppModel(opts Options) AppModel {
	if opts.SortKey == "" {
		opts.SortKey = document.DefaultSortKey
	}

	m := AppModel{
		opts:   opts,
		login:  NewLoginModel(opts.Authenticator),
		logs:   NewLogModel(opts.Client, opts.LogBufferLimit, opts.DownloadDir),
		Width:  80,
		Height: 24,
	}
	m.CurrentScreen = m.gate(ScreenEditor)
	if m.CurrentScreen == ScreenEditor {
		m.resetEditor()
	}
	return m
}

// gate routes private screens to the login screen when no token is stored.
func (m AppModel) gate(screen Screen) Screen {
	if screen.private() && !m.opts.Session.Authenticated() {
		return ScreenLogin
	}
	return screen
}

func (m *AppModel) resetEditor() {
	ctrl := document.NewController(m.opts.Client)
	ctrl.SetSort(m.opts.SortKey)
	m.editor = NewEditorModel(ctrl)
	m.editor.SetSize(m.Width, m.Height)
	m.editorReady = true
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	var cmd tea.Cmd
	switch m.CurrentScreen {
	case ScreenEditor:
		cmd = m.editor.Init()
	case ScreenLogin:
		cmd = m.login.Init()
	}
	return tea.Batch(cmd, m.watchTokens())
}

func (m AppModel) watchTokens() tea.Cmd {
	ch := m.opts.TokenChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		tok, ok := <-ch
		if !ok {
			return nil
		}
		return tokenChangedMsg{token: tok}
	}
}

// Update handles messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.editorReady {
			m.editor.SetSize(msg.Width, msg.Height)
		}
		m.logs.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.logs.Close()
			return m, tea.Quit
		}

	case screenTransitionMsg:
		return m.transitionTo(msg.screen)

	case authenticatedMsg:
		m.opts.Client.SetToken(m.opts.Session.Token())
		if m.CurrentScreen.private() {
			return m, nil
		}
		m.editorReady = false
		return m.transitionTo(ScreenEditor)

	case registeredMsg:
		next, cmd := m.transitionTo(ScreenLogin)
		app := next.(AppModel)
		app.login = app.login.WithNotice(msg.detail, msg.email)
		return app, cmd

	case sessionExpiredMsg:
		logging.Info("Agent rejected the stored token")
		if err := m.opts.Session.Clear(); err != nil {
			logging.Warn("Failed to clear token", zap.Error(err))
		}
		return m.signedOut("Session expired, please log in again")

	case logoutMsg:
		if err := m.opts.Authenticator.Logout(); err != nil {
			logging.Warn("Failed to clear token", zap.Error(err))
		}
		return m.signedOut("")

	case tokenChangedMsg:
		return m.tokenChanged(msg.token)

	case spinner.TickMsg:
		// Each spinner ignores ticks carrying another spinner's ID.
		var c1, c2, c3 tea.Cmd
		if m.editorReady {
			m.editor, c1 = m.editor.Update(msg)
		}
		m.login, c2 = m.login.Update(msg)
		m.register, c3 = m.register.Update(msg)
		return m, tea.Batch(c1, c2, c3)

	case configLoadedMsg, configSavedMsg, EditMsg, AddMsg, DeleteMsg:
		if m.editorReady {
			m.editor, cmd = m.editor.Update(msg)
		}
		return m, cmd

	case logUpdateMsg, downloadDoneMsg:
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd

	case loginResultMsg:
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case registerResultMsg:
		m.register, cmd = m.register.Update(msg)
		return m, cmd
	}

	return m.updateCurrentScreen(msg)
}

func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.CurrentScreen {
	case ScreenLogin:
		m.login, cmd = m.login.Update(msg)
	case ScreenRegister:
		m.register, cmd = m.register.Update(msg)
	case ScreenEditor:
		m.editor, cmd = m.editor.Update(msg)
	case ScreenLogs:
		m.logs, cmd = m.logs.Update(msg)
	}
	return m, cmd
}

// transitionTo switches screens, applying the login gate.
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	screen = m.gate(screen)
	if m.CurrentScreen == ScreenLogs && screen != ScreenLogs {
		m.logs.Close()
	}
	m.CurrentScreen = screen

	switch screen {
	case ScreenLogin:
		m.login = NewLoginModel(m.opts.Authenticator)
		return m, m.login.Init()

	case ScreenRegister:
		m.register = NewRegisterModel(m.opts.Authenticator)
		return m, m.register.Init()

	case ScreenEditor:
		if !m.editorReady {
			m.resetEditor()
			return m, m.editor.Init()
		}
		return m, nil

	case ScreenLogs:
		m.logs.SetSize(m.Width, m.Height)
		return m, m.logs.Open()
	}
	return m, nil
}

// signedOut drops every private screen and shows the login screen.
func (m AppModel) signedOut(reason string) (tea.Model, tea.Cmd) {
	m.opts.Client.SetToken("")
	m.editorReady = false
	next, cmd := m.transitionTo(ScreenLogin)
	app := next.(AppModel)
	app.login.serverErr = reason
	return app, cmd
}

// tokenChanged follows logins and logouts made by other processes.
func (m AppModel) tokenChanged(token string) (tea.Model, tea.Cmd) {
	watch := m.watchTokens()
	m.opts.Client.SetToken(token)

	switch {
	case token == "" && m.CurrentScreen.private():
		logging.Info("Token removed by another process")
		next, cmd := m.signedOut("Logged out")
		return next, tea.Batch(cmd, watch)

	case token != "" && !m.CurrentScreen.private():
		logging.Info("Token stored by another process")
		m.editorReady = false
		next, cmd := m.transitionTo(ScreenEditor)
		return next, tea.Batch(cmd, watch)
	}
	return m, watch
}

// View renders the current screen inside the application container
func (m AppModel) View() string {
	var content, footer string
	switch m.CurrentScreen {
	case ScreenLogin:
		content, footer = m.login.View(), m.login.Footer()
	case ScreenRegister:
		content, footer = m.register.View(), m.register.Footer()
	case ScreenEditor:
		content, footer = m.editor.View(), m.editor.Footer()
	case ScreenLogs:
		content, footer = m.logs.View(), m.logs.Footer()
	}
	return RenderApplicationContainer(m.opts.Client.BaseURL, content, footer, m.Width, m.Height)
}
