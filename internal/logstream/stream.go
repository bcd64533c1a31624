package logstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/logging"
)

const (
	handshakeTimeout = 10 * time.Second
	closeGracePeriod = 2 * time.Second
	updateBuffer     = 256
)

// State is the connection state of a Stream.
type State int

const (
	StateConnecting State = iota
	StateLive
	StateDisconnected
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is one frame sent by the agent.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Line formats the event the way it is displayed and buffered.
func (e Event) Line() string {
	return "[" + e.Type + "]" + e.Message
}

// UpdateKind says what an Update reports.
type UpdateKind int

const (
	UpdateState UpdateKind = iota
	UpdateLine
)

// Update is published on Stream.Updates for every state change and every
// buffered line.
type Update struct {
	Kind  UpdateKind
	State State  // Set for UpdateState
	Line  string // Set for UpdateLine
}

// Stream is one connection to the agent's log channel.
type Stream struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	buf    *Buffer

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	cancel context.CancelFunc

	updates   chan Update
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a stream for the websocket url. header is sent with the
// upgrade request (it normally carries the bearer token). limit bounds the
// line buffer; 0 keeps every line.
func New(url string, header http.Header, limit int) *Stream {
	return &Stream{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		buf:     NewBuffer(limit),
		state:   StateConnecting,
		updates: make(chan Update, updateBuffer),
		done:    make(chan struct{}),
	}
}

// Updates delivers state changes and new lines. It is closed once the
// stream is disconnected.
func (s *Stream) Updates() <-chan Update {
	return s.updates
}

// State returns the current connection state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lines returns the buffered lines, oldest first.
func (s *Stream) Lines() []string {
	return s.buf.Lines()
}

// URL returns the websocket URL the stream follows.
func (s *Stream) URL() string {
	return s.url
}

// Start dials the channel and reads frames in the background until the
// server closes the connection, ctx is cancelled, or Close is called.
func (s *Stream) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Close shuts the connection down. It is safe to call more than once and
// before Start.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		err = s.closeConn()
	})
	return err
}

func (s *Stream) closeConn() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGracePeriod))
	return conn.Close()
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.updates)
	defer s.setState(StateDisconnected)

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	defer cancel()

	conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() == nil {
			logging.Error("Log stream connection failed", zap.String("url", s.url), zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.closeConn()
	}()

	s.setState(StateLive)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if !isNormalClose(err) && ctx.Err() == nil {
				logging.Error("Log stream read failed", zap.String("url", s.url), zap.Error(err))
			}
			return
		}

		logging.LogStreamFrame(messageType, payload)
		if messageType != websocket.TextMessage {
			continue
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			logging.Warn("Skipping malformed log frame", zap.Error(err))
			continue
		}

		line := ev.Line()
		s.buf.Append(line)
		s.publish(Update{Kind: UpdateLine, Line: line})
	}
}

func (s *Stream) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev == next {
		return
	}
	logging.LogStreamState(s.url, prev.String(), next.String())
	s.publish(Update{Kind: UpdateState, State: next})
}

// publish delivers u unless the stream has been closed, in which case
// nobody is listening any more.
func (s *Stream) publish(u Update) {
	select {
	case s.updates <- u:
	case <-s.done:
	}
}

func isNormalClose(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, io.EOF)
}
