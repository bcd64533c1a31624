package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/proxycfg/internal/document"
)

type fakeStore struct {
	doc   document.Document
	err   error
	saved []document.Document
}

func (f *fakeStore) GetConfig(ctx context.Context) (document.Document, error) {
	return f.doc, f.err
}

func (f *fakeStore) SaveConfig(ctx context.Context, doc document.Document) error {
	f.saved = append(f.saved, doc)
	return f.err
}

func testDocument() document.Document {
	doc := document.Default()
	doc.Servers = []document.Server{
		{Name: "alpha", Serial: "A1", Port: 7000},
	}
	doc.Proxies = []document.Proxy{
		{Name: "kitchen", Origin: "10.0.0.5:80", Port: 9002, Location: "Oslo"},
		{Name: "garage", Origin: "10.0.0.6:80", Port: 9000, Location: "Bergen"},
	}
	return doc
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func sectionIndex(title string) int {
	for i, s := range document.Schema {
		if s.Title == title {
			return i
		}
	}
	return -1
}
