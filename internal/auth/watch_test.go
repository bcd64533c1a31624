package auth

import (
	"testing"
	"time"

	"github.com/muurk/proxycfg/internal/config"
)

func TestWatcherSeesExternalLogout(t *testing.T) {
	session := newTestSession(t)
	if err := session.SetToken("first"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	w, err := session.Watch()
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	// Another process clears the token.
	other, err := config.LoadFrom(session.Settings().Path())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	other.AccessToken = ""
	if err := other.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	select {
	case token := <-w.Changes():
		if token != "" {
			t.Errorf("changed token = %q, want empty", token)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	if session.Authenticated() {
		t.Error("session still authenticated after external logout")
	}
}

func TestWatcherClose(t *testing.T) {
	session := newTestSession(t)
	if err := session.SetToken("tok"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	w, err := session.Watch()
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	select {
	case _, ok := <-w.Changes():
		if ok {
			t.Error("Changes() delivered after Close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Changes() not closed after Close")
	}
}
