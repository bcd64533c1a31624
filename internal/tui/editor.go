package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/document"
	"github.com/muurk/proxycfg/internal/logging"
)

// Messages produced by the editor's commands
type configLoadedMsg struct {
	doc document.Document
	err error
}

type configSavedMsg struct {
	err error
}

// sessionExpiredMsg is sent when the agent rejects the stored token.
type sessionExpiredMsg struct{}

// logoutMsg asks the app to clear the stored token.
type logoutMsg struct{}

// editorKeyMap defines key bindings for the configuration editor
type editorKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Save   key.Binding
	Sort   key.Binding
	Filter key.Binding
	Reload key.Binding
	Logs   key.Binding
	Logout key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Save, k.Sort, k.Filter, k.Logs, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Save, k.Reload},
		{k.Sort, k.Filter, k.Logs, k.Logout, k.Quit},
	}
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Sort: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logs"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// EditorModel is the configuration document screen. It owns a controller,
// builds one SectionEditor per schema section and applies their edit
// messages. Section editors are rebuilt only on structural changes so that
// typing never resets an input.
type EditorModel struct {
	ctrl *document.Controller

	sections []SectionEditor // aligned with document.Schema
	current  int             // focused section
	cursor   int             // focused item within the section

	filter    textinput.Model
	filtering bool

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     editorKeyMap
	status   string
}

// NewEditorModel creates the editor screen. The document is fetched by Init.
func NewEditorModel(ctrl *document.Controller) EditorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	filter := textinput.New()
	filter.Prompt = ""
	filter.Placeholder = "location, name, origin or port"
	filter.Width = FieldInputWidth
	filter.SetValue(ctrl.Filter())

	return EditorModel{
		ctrl:     ctrl,
		filter:   filter,
		spinner:  s,
		viewport: viewport.New(MinTerminalWidth-6, 10),
		help:     help.New(),
		keys:     newEditorKeyMap(),
	}
}

// Init starts the spinner and fetches the document.
func (m EditorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m EditorModel) loadCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		doc, err := ctrl.Fetch(context.Background())
		return configLoadedMsg{doc: doc, err: err}
	}
}

func (m EditorModel) saveCmd() tea.Cmd {
	ctrl, snapshot := m.ctrl, m.ctrl.Document()
	return func() tea.Msg {
		return configSavedMsg{err: ctrl.Push(context.Background(), snapshot)}
	}
}

// SetSize fits the scrollable form into the space left by the container.
func (m *EditorModel) SetSize(width, height int) {
	m.viewport.Width = max(width-6, 20)
	m.viewport.Height = max(height-chromeHeight-2, 3)
	m.help.Width = m.viewport.Width
	m.syncViewport()
}

// Update handles messages for the editor screen
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case configLoadedMsg:
		if msg.err != nil {
			logging.Warn("Failed to load configuration", zap.Error(msg.err))
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return sessionExpiredMsg{} }
			}
			m.status = "Could not load configuration: " + api.ShortMessage(msg.err) + " (ctrl+r to retry)"
			return m, nil
		}
		m.ctrl.Loaded(msg.doc)
		m.status = ""
		cmd = m.rebuild()

	case configSavedMsg:
		switch {
		case msg.err == nil:
			m.status = "Configuration saved"
		case api.IsAuthError(msg.err):
			return m, func() tea.Msg { return sessionExpiredMsg{} }
		default:
			m.status = "Save failed: " + api.ShortMessage(msg.err)
		}

	case EditMsg:
		// Inputs already show the new value; no rebuild.
		applyEdit(m.ctrl)(msg)

	case AddMsg:
		if err := m.ctrl.Add(msg.Title); err == nil {
			m.filter.SetValue("")
			m.rebuild()
			cmd = m.focusEntry(msg.Title, m.entryCount(msg.Title)-1)
		}

	case DeleteMsg:
		if err := m.ctrl.Delete(msg.Title, msg.Entry); err == nil {
			cmd = m.rebuild()
		}

	case spinner.TickMsg:
		if m.ctrl.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	m.syncViewport()
	return m, cmd
}

func (m *EditorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		return m.updateFilter(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		m.status = "Reloading configuration..."
		return m.loadCmd()
	case key.Matches(msg, m.keys.Logs):
		return func() tea.Msg { return screenTransitionMsg{screen: ScreenLogs} }
	case key.Matches(msg, m.keys.Logout):
		return func() tea.Msg { return logoutMsg{} }
	}

	if m.ctrl.Loading() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		m.status = "Saving..."
		return m.saveCmd()

	case key.Matches(msg, m.keys.Sort):
		m.ctrl.SetSort(m.ctrl.SortKey().Next())
		return m.rebuild()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.blurSections()
		return m.filter.Focus()

	case key.Matches(msg, m.keys.Next):
		return m.move(1)

	case key.Matches(msg, m.keys.Prev):
		return m.move(-1)
	}

	var cmd tea.Cmd
	m.sections[m.current], cmd = m.sections[m.current].Update(msg)
	return cmd
}

// updateFilter edits the proxy filter; enter, esc or tab return to the form.
func (m *EditorModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.filtering = false
		m.filter.Blur()
		return m.focusAt(m.current, m.cursor)
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if after := m.filter.Value(); after != before {
		m.ctrl.SetFilter(after)
		m.rebuild()
		m.blurSections()
	}
	return cmd
}

// rebuild recreates the section editors from the controller and restores
// focus as close as possible to where it was.
func (m *EditorModel) rebuild() tea.Cmd {
	doc := m.ctrl.Document()
	onEdit := applyEdit(m.ctrl)
	sections := make([]SectionEditor, 0, len(document.Schema))
	for _, sec := range document.Schema {
		sections = append(sections, NewSectionEditor(sec, m.blocksFor(sec, doc), onEdit))
	}
	m.sections = sections
	return m.focusAt(m.current, m.cursor)
}

// applyEdit returns the callback the fields use to write into the document.
// Edits land in the controller before Update returns, so a save or a
// second keystroke always sees them.
func applyEdit(ctrl *document.Controller) EditFunc {
	return func(e EditMsg) {
		_ = ctrl.Update(e.Title, e.Raw, e.Entry, e.Field)
	}
}

func (m *EditorModel) blocksFor(sec document.Section, doc document.Document) []Block {
	var blocks []Block
	switch sec.Title {
	case document.SectionAgent:
		blocks = append(blocks, blockOf(sec, document.NoEntry, doc.Agent))
	case document.SectionServers:
		for i, s := range doc.Servers {
			blocks = append(blocks, blockOf(sec, i, s))
		}
	case document.SectionProxies:
		for _, ip := range m.ctrl.VisibleProxies() {
			blocks = append(blocks, blockOf(sec, ip.Index, ip.Proxy))
		}
	case document.SectionFileShare:
		blocks = append(blocks, blockOf(sec, document.NoEntry, doc.FileShare))
	}
	return blocks
}

func blockOf(sec document.Section, entry int, record any) Block {
	values, err := sec.Values(record)
	if err != nil {
		logging.Error("Schema does not match record", zap.String("section", sec.Title), zap.Error(err))
	}
	return Block{Entry: entry, Values: values}
}

func (m EditorModel) entryCount(title string) int {
	doc := m.ctrl.Document()
	switch title {
	case document.SectionServers:
		return len(doc.Servers)
	case document.SectionProxies:
		return len(doc.Proxies)
	}
	return 0
}

func (m *EditorModel) blurSections() {
	for i := range m.sections {
		m.sections[i].Blur()
	}
}

// focusAt moves the focus to item it of section sec.
func (m *EditorModel) focusAt(sec, it int) tea.Cmd {
	if len(m.sections) == 0 {
		return nil
	}
	m.blurSections()
	sec = min(max(sec, 0), len(m.sections)-1)
	m.current = sec
	cmd := m.sections[sec].FocusItem(it)
	m.cursor = m.sections[sec].Cursor()
	return cmd
}

// focusEntry focuses the first field of a list entry.
func (m *EditorModel) focusEntry(title string, entry int) tea.Cmd {
	for si, s := range m.sections {
		if s.Title() != title {
			continue
		}
		if it, ok := s.EntryItem(entry); ok {
			return m.focusAt(si, it)
		}
	}
	return nil
}

// move steps the focus forward or backward, wrapping around the form.
func (m *EditorModel) move(delta int) tea.Cmd {
	n := len(m.sections)
	if n == 0 {
		return nil
	}
	sec, it := m.current, m.cursor+delta
	if it >= m.sections[sec].Len() {
		sec, it = (sec+1)%n, 0
	}
	if it < 0 {
		sec = (sec - 1 + n) % n
		it = m.sections[sec].Len() - 1
	}
	return m.focusAt(sec, it)
}

// position returns the focus index of the focused field and the number of
// fields in the form, or ok=false when an action or the filter has focus.
func (m EditorModel) position() (pos, total int, ok bool) {
	if m.filtering || len(m.sections) == 0 {
		return 0, 0, false
	}
	block, field, ok := m.sections[m.current].FocusedField()
	if !ok {
		return 0, 0, false
	}
	servers, proxies := m.shownEntries(document.SectionServers), m.shownEntries(document.SectionProxies)
	pos = document.TabIndex(servers, proxies, m.sections[m.current].Title(), block, field)
	total = document.TabIndex(servers, proxies, document.SectionFileShare, 0, document.FieldCount(document.SectionFileShare)-1)
	return pos, total, true
}

// shownEntries returns the number of blocks the section editor displays.
// Between structural changes this can differ from the controller's view: a
// proxy edited so that it no longer matches the filter stays on screen.
func (m EditorModel) shownEntries(title string) int {
	for _, s := range m.sections {
		if s.Title() == title {
			return len(s.blocks)
		}
	}
	return 0
}

// syncViewport renders the form into the viewport and scrolls so that the
// focused item is visible.
func (m *EditorModel) syncViewport() {
	if m.ctrl == nil || m.ctrl.Loading() || len(m.sections) == 0 {
		return
	}
	content := m.renderForm()
	m.viewport.SetContent(content)

	line := -1
	for i, l := range strings.Split(content, "\n") {
		if strings.Contains(l, focusMarker) {
			line = i
			break
		}
	}
	if m.filtering {
		line = m.filterLine(content)
	}
	if line < 0 {
		return
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m EditorModel) filterLine(content string) int {
	for i, l := range strings.Split(content, "\n") {
		if strings.Contains(l, "Filter:") {
			return i
		}
	}
	return -1
}

func (m EditorModel) renderForm() string {
	var b strings.Builder
	for i, s := range m.sections {
		if s.Title() == document.SectionProxies {
			b.WriteString(m.renderViewBar())
			b.WriteString("\n")
		}
		b.WriteString(s.View())
		if i < len(m.sections)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderViewBar renders the proxy sort and filter controls.
func (m EditorModel) renderViewBar() string {
	label := LabelStyle
	if m.filtering {
		label = FocusedLabelStyle
	}
	sortText := fmt.Sprintf("Sort by: %s", m.ctrl.SortKey())
	visible, total := m.shownEntries(document.SectionProxies), len(m.ctrl.Document().Proxies)
	count := SubtitleStyle.Render(fmt.Sprintf("  %d of %d proxies", visible, total))
	return StatusStyle.Render(sortText) + count + "\n" +
		label.Render("Filter:") + m.filter.View()
}

// View renders the editor screen
func (m EditorModel) View() string {
	if m.ctrl.Loading() {
		var b strings.Builder
		b.WriteString(RenderTitle("Configuration"))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Loading configuration...")
		if m.status != "" {
			b.WriteString("\n\n")
			b.WriteString(StatusStyle.Render(m.status))
		}
		return b.String()
	}

	status := m.status
	if pos, total, ok := m.position(); ok {
		if status != "" {
			status += "  "
		}
		status += fmt.Sprintf("field %d of %d", pos, total)
	}
	return m.viewport.View() + "\n" + StatusStyle.Render(status)
}

// Footer returns the help line for the container footer.
func (m EditorModel) Footer() string {
	return m.help.View(m.keys)
}
