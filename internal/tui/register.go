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

type registerResultMsg struct {
	detail string
	email  string
	err    error
}

// registeredMsg carries the agent's confirmation back to the login screen.
type registeredMsg struct {
	detail string
	email  string
}

// RegisterModel is the account registration screen.
type RegisterModel struct {
	auth *auth.Authenticator
	form accountForm

	submitting bool
	serverErr  string

	spinner spinner.Model
	help    help.Model
	keys    accountKeyMap
}

// NewRegisterModel creates the registration screen.
func NewRegisterModel(a *auth.Authenticator) RegisterModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := RegisterModel{
		auth:    a,
		form:    newAccountForm("Register", "Username", "Email", "Password"),
		spinner: s,
		help:    help.New(),
		keys:    newAccountKeyMap("esc", "back to login"),
	}
	m.form.setFocus(0)
	return m
}

// Init focuses the first input.
func (m RegisterModel) Init() tea.Cmd {
	return m.form.setFocus(m.form.focus)
}

// Update handles messages for the registration screen
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		m.submitting = false
		if msg.err == nil {
			detail, email := msg.detail, msg.email
			if detail == "" {
				detail = "Registration complete"
			}
			return m, func() tea.Msg { return registeredMsg{detail: detail, email: email} }
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
			return m, func() tea.Msg { return screenTransitionMsg{screen: ScreenLogin} }
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

func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	username := strings.TrimSpace(m.form.value("Username"))
	email := strings.TrimSpace(m.form.value("Email"))
	password := m.form.value("Password")

	m.serverErr = ""
	if fe := auth.ValidateRegister(username, email, password); !fe.OK() {
		m.showFieldErrors(fe)
		return m, nil
	}
	m.form.clearErrors()
	m.submitting = true

	a := m.auth
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		detail, err := a.Register(context.Background(), username, email, password)
		return registerResultMsg{detail: detail, email: email, err: err}
	})
}

func (m *RegisterModel) showFieldErrors(fe auth.FieldErrors) {
	m.form.clearErrors()
	m.form.setError("Username", fe.Username)
	m.form.setError("Email", fe.Email)
	m.form.setError("Password", fe.Password)
}

// View renders the registration screen
func (m RegisterModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Create an account"))
	b.WriteString("\n")
	b.WriteString(m.form.view())
	b.WriteString("\n\n")
	if m.submitting {
		b.WriteString(m.spinner.View() + " Registering...")
	} else if m.serverErr != "" {
		b.WriteString(RenderError(m.serverErr))
	}
	return b.String()
}

// Footer returns the help line for the container footer.
func (m RegisterModel) Footer() string {
	return m.help.View(m.keys)
}
