package tui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/logstream"
)

func TestLogModelFollowsStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.PathLogStream {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"INFO","message":"proxy up"}`))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	m := NewLogModel(api.NewClient(srv.URL), 0, t.TempDir())
	cmd := m.Open()
	defer m.Close()

	for i := 0; cmd != nil && i < 20; i++ {
		m, cmd = m.Update(cmd())
	}

	if m.state != logstream.StateDisconnected {
		t.Errorf("state = %v, want disconnected", m.state)
	}
	if !strings.Contains(m.View(), "[INFO]proxy up") {
		t.Errorf("View() missing log line:\n%s", m.View())
	}
}

func TestLogModelIgnoresStaleStream(t *testing.T) {
	m := NewLogModel(api.NewClient("http://127.0.0.1:1"), 0, t.TempDir())
	stale := logstream.New("ws://127.0.0.1:1/logging", nil, 0)

	m, cmd := m.Update(logUpdateMsg{stream: stale, ok: true, update: logstream.Update{Kind: logstream.UpdateState, State: logstream.StateLive}})
	if cmd != nil || m.state != logstream.StateDisconnected {
		t.Errorf("stale update changed the screen: state = %v", m.state)
	}
}

func TestLogModelDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.LogProxy.Path() {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("line one\nline two\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := NewLogModel(api.NewClient(srv.URL), 0, dir)

	m, cmd := m.Update(keyRunes("2"))
	if cmd == nil {
		t.Fatal("expected download command")
	}
	m, _ = m.Update(cmd())

	path := filepath.Join(dir, api.LogProxy.FileName())
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "line one\nline two\n" {
		t.Errorf("downloaded %q", data)
	}
	if !strings.Contains(m.status, path) {
		t.Errorf("status = %q, want path", m.status)
	}
}

func TestLogModelDownloadFailureRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"missing"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := NewLogModel(api.NewClient(srv.URL), 0, dir)
	m, cmd := m.Update(keyRunes("3"))
	m, _ = m.Update(cmd())

	if _, err := os.Stat(filepath.Join(dir, api.LogWeb.FileName())); !os.IsNotExist(err) {
		t.Errorf("partial file left behind (stat err = %v)", err)
	}
	if !strings.Contains(m.status, "failed") {
		t.Errorf("status = %q", m.status)
	}
}
