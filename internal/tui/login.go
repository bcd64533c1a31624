package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/auth"
)

type loginResultMsg struct {
	err error
}

// authenticatedMsg is sent once a token has been stored.
type authenticatedMsg struct{}

// accountKeyMap defines key bindings for the login and registration screens
type accountKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k accountKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Switch, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k accountKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit, k.Switch, k.Quit},
	}
}

func newAccountKeyMap(switchKey, switchHelp string) accountKeyMap {
	return accountKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Switch: key.NewBinding(
			key.WithKeys(switchKey),
			key.WithHelp(switchKey, switchHelp),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// LoginModel is the login screen.
type LoginModel struct {
	auth *auth.Authenticator
	form accountForm

	submitting bool
	serverErr  string
	notice     string

	spinner spinner.Model
	help    help.Model
	keys    accountKeyMap
}

// NewLoginModel creates the login screen.
func NewLoginModel(a *auth.Authenticator) LoginModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := LoginModel{
		auth:    a,
		form:    newAccountForm("Log in", "Email", "Password"),
		spinner: s,
		help:    help.New(),
		keys:    newAccountKeyMap("ctrl+n", "register"),
	}
	m.form.setFocus(0)
	return m
}

// Init focuses the first input.
func (m LoginModel) Init() tea.Cmd {
	return m.form.setFocus(m.form.focus)
}

// WithNotice returns the screen showing a success notice and the email
// prefilled, as after a registration.
func (m LoginModel) WithNotice(notice, email string) LoginModel {
	m.notice = notice
	if email != "" {
		m.form.setValue("Email", email)
		m.form.setFocus(1)
	}
	return m
}

// Update handles messages for the login screen
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err == nil {
			return m, func() tea.Msg { return authenticatedMsg{} }
		}
		var fe auth.FieldErrors
		if errors.As(msg.err, &fe) {
			m.showFieldErrors(fe)
			return m, nil
		}
		m.serverErr = api.DetailText(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Switch):
			return m, func() tea.Msg { return screenTransitionMsg{screen: ScreenRegister} }
		case key.Matches(msg, m.keys.Next):
			return m, m.form.setFocus(m.form.focus + 1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.form.setFocus(m.form.focus - 1)
		case key.Matches(msg, m.keys.Submit):
			if m.form.onSubmit() || m.form.onLastInput() {
				return m.submit()
			}
			return m, m.form.setFocus(m.form.focus + 1)
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submit validates locally and only then sends the login request.
func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.form.value("Email"))
	password := m.form.value("Password")

	m.serverErr, m.notice = "", ""
	if fe := auth.ValidateLogin(email, password); !fe.OK() {
		m.showFieldErrors(fe)
		return m, nil
	}
	m.form.clearErrors()
	m.submitting = true

	a := m.auth
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loginResultMsg{err: a.Login(context.Background(), email, password)}
	})
}

func (m *LoginModel) showFieldErrors(fe auth.FieldErrors) {
	m.form.clearErrors()
	m.form.setError("Email", fe.Email)
	m.form.setError("Password", fe.Password)
}

// View renders the login screen
func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Log in"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(RenderSuccess(m.notice))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.view())
	b.WriteString("\n\n")
	if m.submitting {
		b.WriteString(m.spinner.View() + " Signing in...")
	} else if m.serverErr != "" {
		b.WriteString(RenderError(m.serverErr))
	}
	return b.String()
}

// Footer returns the help line for the container footer.
func (m LoginModel) Footer() string {
	return m.help.View(m.keys)
}
