package logstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// collect drains updates until the channel closes or the timeout expires.
func collect(t *testing.T, s *Stream, timeout time.Duration) ([]State, []string) {
	t.Helper()

	var states []State
	var lines []string
	deadline := time.After(timeout)
	for {
		select {
		case u, ok := <-s.Updates():
			if !ok {
				return states, lines
			}
			switch u.Kind {
			case UpdateState:
				states = append(states, u.State)
			case UpdateLine:
				lines = append(lines, u.Line)
			}
		case <-deadline:
			t.Fatal("timed out waiting for the stream to finish")
			return states, lines
		}
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/logging"
}

func TestStreamReceivesLinesThenDisconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	authHeader := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(Event{Type: "info", Message: "proxy kitchen connected"})
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(Event{Type: "error", Message: "origin timeout"})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer tok")
	s := New(wsURL(server), header, 0)

	if s.State() != StateConnecting {
		t.Errorf("initial State() = %v, want connecting", s.State())
	}

	s.Start(context.Background())
	states, lines := collect(t, s, 5*time.Second)

	wantStates := []State{StateLive, StateDisconnected}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	wantLines := []string{"[info]proxy kitchen connected", "[error]origin timeout"}
	if !reflect.DeepEqual(lines, wantLines) {
		t.Errorf("lines = %v, want %v", lines, wantLines)
	}
	if !reflect.DeepEqual(s.Lines(), wantLines) {
		t.Errorf("Lines() = %v, want %v", s.Lines(), wantLines)
	}
	if s.State() != StateDisconnected {
		t.Errorf("final State() = %v, want disconnected", s.State())
	}
	if got := <-authHeader; got != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", got)
	}
}

func TestStreamCloseFromClient(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverDone := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		defer close(serverDone)

		_ = conn.WriteJSON(Event{Type: "info", Message: "hello"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	s := New(wsURL(server), nil, 0)
	s.Start(context.Background())

	// Wait for the first line, then close locally.
	deadline := time.After(5 * time.Second)
	for got := false; !got; {
		select {
		case u := <-s.Updates():
			got = u.Kind == UpdateLine
		case <-deadline:
			t.Fatal("no line received")
		}
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the connection close")
	}

	for range s.Updates() {
	}
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", s.State())
	}
}

func TestStreamDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	s := New(wsURL(server), nil, 0)
	s.Start(context.Background())
	states, lines := collect(t, s, 5*time.Second)

	if !reflect.DeepEqual(states, []State{StateDisconnected}) {
		t.Errorf("states = %v, want [disconnected]", states)
	}
	if len(lines) != 0 {
		t.Errorf("lines = %v, want none", lines)
	}
}

func TestStreamContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := New(wsURL(server), nil, 0)
	s.Start(ctx)

	select {
	case u := <-s.Updates():
		if u.Kind != UpdateState || u.State != StateLive {
			t.Fatalf("first update = %+v, want live", u)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream never went live")
	}

	cancel()
	states, _ := collect(t, s, 5*time.Second)
	if !reflect.DeepEqual(states, []State{StateDisconnected}) {
		t.Errorf("states after cancel = %v, want [disconnected]", states)
	}
}

func TestEventLine(t *testing.T) {
	if got := (Event{Type: "warn", Message: "slow"}).Line(); got != "[warn]slow" {
		t.Errorf("Line() = %q, want [warn]slow", got)
	}
}
