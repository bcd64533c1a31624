package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/proxycfg/internal/document"
)

func proxiesEditor(t *testing.T, onEdit EditFunc) SectionEditor {
	t.Helper()
	sec, _ := document.LookupSection(document.SectionProxies)
	doc := testDocument()

	// Displayed in port order: garage (entry 1) before kitchen (entry 0).
	var blocks []Block
	for _, ip := range document.SortProxies(doc.Proxies, document.SortByPort) {
		blocks = append(blocks, blockOf(sec, ip.Index, ip.Proxy))
	}
	return NewSectionEditor(sec, blocks, onEdit)
}

func TestSectionEditorItems(t *testing.T) {
	s := proxiesEditor(t, nil)
	fields := document.FieldCount(document.SectionProxies)
	if want := 2*(1+fields) + 1; s.Len() != want {
		t.Fatalf("Len() = %d, want %d", s.Len(), want)
	}

	agent, _ := document.LookupSection(document.SectionAgent)
	single := NewSectionEditor(agent, []Block{blockOf(agent, document.NoEntry, document.Agent{})}, nil)
	if single.Len() != len(agent.Fields) {
		t.Errorf("single section Len() = %d, want %d", single.Len(), len(agent.Fields))
	}
}

func TestSectionEditorDeleteCarriesCanonicalEntry(t *testing.T) {
	s := proxiesEditor(t, nil)
	s.FocusItem(0)

	_, cmd := s.Update(keyType(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command from [Delete]")
	}
	msg, ok := cmd().(DeleteMsg)
	if !ok {
		t.Fatalf("message = %T, want DeleteMsg", cmd())
	}
	if msg.Title != document.SectionProxies || msg.Entry != 1 {
		t.Errorf("DeleteMsg = %+v, want Proxies entry 1", msg)
	}
}

func TestSectionEditorAdd(t *testing.T) {
	s := proxiesEditor(t, nil)
	s.FocusItem(s.Len() - 1)

	_, cmd := s.Update(keyRunes(" "))
	if cmd == nil {
		t.Fatal("expected a command from [Add]")
	}
	if msg, ok := cmd().(AddMsg); !ok || msg.Title != document.SectionProxies {
		t.Errorf("message = %#v, want AddMsg for Proxies", cmd())
	}
}

func TestSectionEditorReportsEditsDuringUpdate(t *testing.T) {
	var edits []EditMsg
	s := proxiesEditor(t, func(e EditMsg) { edits = append(edits, e) })

	// Second block, auto_connect field.
	autoConnect := 3
	it, ok := s.EntryItem(0)
	if !ok {
		t.Fatal("EntryItem(0) not found")
	}
	s.FocusItem(it + autoConnect)

	block, field, ok := s.FocusedField()
	if !ok || block != 1 || field != autoConnect {
		t.Fatalf("FocusedField() = %d, %d, %v; want 1, %d, true", block, field, ok, autoConnect)
	}

	s, _ = s.Update(keyRunes(" "))
	want := EditMsg{Title: document.SectionProxies, Raw: true, Entry: 0, Field: autoConnect}
	if len(edits) != 1 || edits[0] != want {
		t.Fatalf("edits = %+v, want [%+v]", edits, want)
	}

	// Text fields report the whole value after each keystroke.
	s.FocusItem(it)
	s, _ = s.Update(keyRunes("x"))
	s, _ = s.Update(keyRunes("y"))
	if len(edits) != 3 {
		t.Fatalf("edits = %d, want 3", len(edits))
	}
	if edits[1].Raw != "kitchenx" || edits[2].Raw != "kitchenxy" {
		t.Errorf("raw values = %v, %v", edits[1].Raw, edits[2].Raw)
	}
}

func TestSectionEditorFocusClamps(t *testing.T) {
	s := proxiesEditor(t, nil)
	s.FocusItem(1000)
	if s.Cursor() != s.Len()-1 {
		t.Errorf("Cursor() = %d, want %d", s.Cursor(), s.Len()-1)
	}
	s.FocusItem(-3)
	if s.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", s.Cursor())
	}
}
