package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/logging"
	"github.com/muurk/proxycfg/internal/logstream"
)

// logUpdateMsg carries one update from a stream. Updates from a stream
// that is no longer shown are dropped.
type logUpdateMsg struct {
	stream *logstream.Stream
	update logstream.Update
	ok     bool
}

type downloadDoneMsg struct {
	kind api.LogKind
	path string
	size int64
	err  error
}

// logKeyMap defines key bindings for the log screen
type logKeyMap struct {
	Share     key.Binding
	Proxy     key.Binding
	Web       key.Binding
	Reconnect key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k logKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Share, k.Proxy, k.Web, k.Reconnect, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k logKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Share, k.Proxy, k.Web},
		{k.Reconnect, k.Back, k.Quit},
	}
}

func newLogKeyMap() logKeyMap {
	return logKeyMap{
		Share: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "share log"),
		),
		Proxy: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "proxy log"),
		),
		Web: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "web log"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "ctrl+l"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// LogModel is the live log screen. It follows the agent's log channel and
// offers the downloadable log files.
type LogModel struct {
	client      *api.Client
	bufferLimit int
	downloadDir string

	stream *logstream.Stream
	state  logstream.State

	viewport viewport.Model
	follow   bool
	status   string

	help help.Model
	keys logKeyMap
}

// NewLogModel creates the log screen. Downloads are written to downloadDir.
func NewLogModel(client *api.Client, bufferLimit int, downloadDir string) LogModel {
	return LogModel{
		client:      client,
		bufferLimit: bufferLimit,
		downloadDir: downloadDir,
		state:       logstream.StateDisconnected,
		viewport:    viewport.New(MinTerminalWidth-6, 10),
		follow:      true,
		help:        help.New(),
		keys:        newLogKeyMap(),
	}
}

// Open connects a new stream, replacing any previous one.
func (m *LogModel) Open() tea.Cmd {
	m.Close()

	url, err := m.client.LogStreamURL()
	if err != nil {
		m.status = "Invalid agent address: " + err.Error()
		return nil
	}

	m.stream = logstream.New(url, m.client.AuthHeader(), m.bufferLimit)
	m.state = logstream.StateConnecting
	m.status = ""
	m.follow = true
	m.viewport.SetContent("")
	m.stream.Start(context.Background())
	return waitForUpdate(m.stream)
}

// Close shuts the current stream down.
func (m *LogModel) Close() {
	if m.stream == nil {
		return
	}
	if err := m.stream.Close(); err != nil {
		logging.Debug("Closing log stream", zap.Error(err))
	}
	m.stream = nil
	m.state = logstream.StateDisconnected
}

func waitForUpdate(s *logstream.Stream) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-s.Updates()
		return logUpdateMsg{stream: s, update: u, ok: ok}
	}
}

func (m LogModel) downloadCmd(kind api.LogKind) tea.Cmd {
	client, path := m.client, filepath.Join(m.downloadDir, kind.FileName())
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return downloadDoneMsg{kind: kind, path: path, err: err}
		}
		n, err := client.Download(context.Background(), kind, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
		return downloadDoneMsg{kind: kind, path: path, size: n, err: err}
	}
}

// SetSize fits the log viewport into the space left by the container.
func (m *LogModel) SetSize(width, height int) {
	m.viewport.Width = max(width-6, 20)
	m.viewport.Height = max(height-chromeHeight-3, 3)
	m.help.Width = m.viewport.Width
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Update handles messages for the log screen
func (m LogModel) Update(msg tea.Msg) (LogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case logUpdateMsg:
		if m.stream == nil || msg.stream != m.stream {
			return m, nil
		}
		if !msg.ok {
			m.state = logstream.StateDisconnected
			return m, nil
		}
		switch msg.update.Kind {
		case logstream.UpdateState:
			m.state = msg.update.State
		case logstream.UpdateLine:
			m.viewport.SetContent(strings.Join(m.stream.Lines(), "\n"))
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
		return m, waitForUpdate(m.stream)

	case downloadDoneMsg:
		if msg.err != nil {
			logging.Warn("Log download failed", zap.String("kind", string(msg.kind)), zap.Error(msg.err))
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return sessionExpiredMsg{} }
			}
			m.status = fmt.Sprintf("Download of %s log failed: %s", msg.kind, api.ShortMessage(msg.err))
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %s log to %s (%d bytes)", msg.kind, msg.path, msg.size)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return screenTransitionMsg{screen: ScreenEditor} }
		case key.Matches(msg, m.keys.Reconnect):
			if m.state == logstream.StateDisconnected {
				return m, m.Open()
			}
			return m, nil
		case key.Matches(msg, m.keys.Share):
			m.status = "Downloading share log..."
			return m, m.downloadCmd(api.LogShare)
		case key.Matches(msg, m.keys.Proxy):
			m.status = "Downloading proxy log..."
			return m, m.downloadCmd(api.LogProxy)
		case key.Matches(msg, m.keys.Web):
			m.status = "Downloading web log..."
			return m, m.downloadCmd(api.LogWeb)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()
	return m, cmd
}

func (m LogModel) renderState() string {
	switch m.state {
	case logstream.StateLive:
		return LiveStyle.Render("● live")
	case logstream.StateConnecting:
		return ConnectingStyle.Render("○ connecting")
	default:
		return OfflineStyle.Render("○ disconnected") + StatusStyle.Render("  (r to reconnect)")
	}
}

// View renders the log screen
func (m LogModel) View() string {
	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render("Logs"))
	b.WriteString("  ")
	b.WriteString(m.renderState())
	b.WriteString("\n")
	if m.stream == nil || len(m.stream.Lines()) == 0 {
		b.WriteString(SubtitleStyle.Render("No log lines yet"))
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(StatusStyle.Render(m.status))
	return b.String()
}

// Footer returns the help line for the container footer.
func (m LogModel) Footer() string {
	return m.help.View(m.keys)
}
