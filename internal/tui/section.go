package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/proxycfg/internal/document"
)

// EditMsg reports a field edit. Entry is the canonical list index of the
// edited record, or document.NoEntry for single sections.
type EditMsg struct {
	Title string
	Raw   any
	Entry int
	Field int
}

// EditFunc applies an edit as soon as a field reports it.
type EditFunc func(EditMsg)

// AddMsg asks for a placeholder entry to be appended to a list section.
type AddMsg struct {
	Title string
}

// DeleteMsg asks for the entry at the canonical index to be removed.
type DeleteMsg struct {
	Title string
	Entry int
}

// Block is one record shown by a section editor.
type Block struct {
	Entry  int   // canonical index, or document.NoEntry
	Values []any // current values in schema order
}

type itemKind int

const (
	itemField itemKind = iota
	itemDelete
	itemAdd
)

// item is one focusable element of a section editor.
type item struct {
	kind  itemKind
	block int
	field int
}

type blockView struct {
	entry  int
	fields []ValueField
}

// SectionEditor renders one schema section: a block of fields per record,
// plus Delete and Add actions for list sections. Focus moves through the
// items in display order: for each block the Delete action then its fields,
// then the Add action.
type SectionEditor struct {
	section document.Section
	blocks  []blockView
	items   []item
	cursor  int
	focused bool
}

// NewSectionEditor builds the editor for section with one block per record.
// Field edits are passed to onEdit from within Update.
func NewSectionEditor(section document.Section, blocks []Block, onEdit EditFunc) SectionEditor {
	s := SectionEditor{section: section}

	for bi, b := range blocks {
		bv := blockView{entry: b.Entry}
		if section.List {
			s.items = append(s.items, item{kind: itemDelete, block: bi})
		}
		for fi, field := range section.Fields {
			var value any
			if fi < len(b.Values) {
				value = b.Values[fi]
			}
			bv.fields = append(bv.fields, NewValueField(field, value, bindEdit(onEdit, section.Title, b.Entry, fi)))
			s.items = append(s.items, item{kind: itemField, block: bi, field: fi})
		}
		s.blocks = append(s.blocks, bv)
	}
	if section.List {
		s.items = append(s.items, item{kind: itemAdd})
	}
	return s
}

// bindEdit binds a field's change callback to its address in the document.
func bindEdit(onEdit EditFunc, title string, entry, fieldPos int) ChangeFunc {
	return func(raw any) {
		if onEdit != nil {
			onEdit(EditMsg{Title: title, Raw: raw, Entry: entry, Field: fieldPos})
		}
	}
}

// Title returns the section title.
func (s SectionEditor) Title() string {
	return s.section.Title
}

// Len returns the number of focusable items.
func (s SectionEditor) Len() int {
	return len(s.items)
}

// Cursor returns the focused item position.
func (s SectionEditor) Cursor() int {
	return s.cursor
}

// FocusedField returns the display position of the focused block and the
// schema position of the focused field. ok is false when the focus is on
// an action or the section is blurred.
func (s SectionEditor) FocusedField() (block, field int, ok bool) {
	if !s.focused || s.cursor >= len(s.items) {
		return 0, 0, false
	}
	it := s.items[s.cursor]
	if it.kind != itemField {
		return 0, 0, false
	}
	return it.block, it.field, true
}

// EntryItem returns the item position of the first field of the block
// holding the canonical entry.
func (s SectionEditor) EntryItem(entry int) (int, bool) {
	for i, it := range s.items {
		if it.kind == itemField && it.field == 0 && s.blocks[it.block].entry == entry {
			return i, true
		}
	}
	return 0, false
}

// FocusItem moves the focus to item i, clamped to the valid range.
func (s *SectionEditor) FocusItem(i int) tea.Cmd {
	s.Blur()
	if len(s.items) == 0 {
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.items) {
		i = len(s.items) - 1
	}
	s.cursor = i
	s.focused = true

	it := s.items[i]
	if it.kind == itemField {
		return s.blocks[it.block].fields[it.field].Focus()
	}
	return nil
}

// Blur removes the focus from every item.
func (s *SectionEditor) Blur() {
	s.focused = false
	for bi := range s.blocks {
		for fi := range s.blocks[bi].fields {
			s.blocks[bi].fields[fi].Blur()
		}
	}
}

// Update routes input to the focused item.
func (s SectionEditor) Update(msg tea.Msg) (SectionEditor, tea.Cmd) {
	if !s.focused || s.cursor >= len(s.items) {
		return s, nil
	}

	it := s.items[s.cursor]
	switch it.kind {
	case itemField:
		var cmd tea.Cmd
		bv := &s.blocks[it.block]
		bv.fields[it.field], cmd = bv.fields[it.field].Update(msg)
		return s, cmd

	case itemDelete:
		if isActivate(msg) {
			title, entry := s.section.Title, s.blocks[it.block].entry
			return s, func() tea.Msg { return DeleteMsg{Title: title, Entry: entry} }
		}

	case itemAdd:
		if isActivate(msg) {
			title := s.section.Title
			return s, func() tea.Msg { return AddMsg{Title: title} }
		}
	}
	return s, nil
}

func isActivate(msg tea.Msg) bool {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	switch k.String() {
	case "enter", " ":
		return true
	}
	return false
}

// View renders the section.
func (s SectionEditor) View() string {
	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render(s.section.Title))
	b.WriteString("\n")

	if s.section.List && len(s.blocks) == 0 {
		b.WriteString(SubtitleStyle.Render("  (none)"))
		b.WriteString("\n")
	}

	for bi, bv := range s.blocks {
		var rows []string
		blockFocused := false
		if s.section.List {
			focused := s.isFocused(item{kind: itemDelete, block: bi})
			blockFocused = blockFocused || focused
			rows = append(rows, renderButton("Delete", focused))
		}
		for _, f := range bv.fields {
			blockFocused = blockFocused || f.Focused()
			rows = append(rows, f.View())
		}
		body := strings.Join(rows, "\n")

		if s.section.List {
			style := BlockStyle
			if blockFocused {
				style = FocusedBlockStyle
			}
			b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  #%d", bv.entry+1)))
			b.WriteString("\n")
			body = style.Render(body)
		}
		b.WriteString(body)
		b.WriteString("\n")
	}

	if s.section.List {
		b.WriteString(renderButton("Add", s.isFocused(item{kind: itemAdd})))
		b.WriteString("\n")
	}
	return b.String()
}

func (s SectionEditor) isFocused(it item) bool {
	return s.focused && s.cursor < len(s.items) && s.items[s.cursor] == it
}
