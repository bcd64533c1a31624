package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/proxycfg/internal/document"
	"github.com/muurk/proxycfg/internal/logging"
	"github.com/muurk/proxycfg/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultBaseURL is used when no agent address has been configured
	DefaultBaseURL = "http://localhost:8080"

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// Agent endpoints.
const (
	PathConfig    = "/cfg"
	PathLogin     = "/api/login"
	PathRegister  = "/api/register"
	PathLogStream = "/logging"
)

// LogKind names one of the log files the agent offers for download.
type LogKind string

const (
	LogShare LogKind = "share"
	LogProxy LogKind = "proxy"
	LogWeb   LogKind = "web"
)

// LogKinds lists the downloadable logs in display order.
var LogKinds = []LogKind{LogShare, LogProxy, LogWeb}

// Path returns the download endpoint for the log kind.
func (k LogKind) Path() string {
	switch k {
	case LogShare:
		return "/download-sambalog"
	case LogProxy:
		return "/download-proxylog"
	case LogWeb:
		return "/download-weblog"
	default:
		return ""
	}
}

// FileName is the default local file name for a downloaded log.
func (k LogKind) FileName() string {
	return fmt.Sprintf("%s.log", k)
}

// ParseLogKind validates a user supplied log kind.
func ParseLogKind(s string) (LogKind, error) {
	k := LogKind(strings.ToLower(strings.TrimSpace(s)))
	if k.Path() == "" {
		return "", fmt.Errorf("invalid log kind %q (valid: share, proxy, web)", s)
	}
	return k, nil
}

// Client talks to one agent.
type Client struct {
	// BaseURL is the agent's base URL without a trailing slash (e.g., "http://10.0.0.2:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// token is the bearer token sent on every request when non-empty. It is
	// replaced on the UI goroutine while requests read it on others.
	mu    sync.RWMutex
	token string
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewClient creates a client for the agent at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetToken sets the bearer token used for subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the bearer token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// AuthHeader returns the headers that authenticate a request, for callers
// that open their own connections (the log stream).
func (c *Client) AuthHeader() http.Header {
	h := http.Header{}
	if token := c.Token(); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// GetConfig retrieves the configuration document.
func (c *Client) GetConfig(ctx context.Context) (document.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, PathConfig, nil)
	if err != nil {
		return document.Document{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return document.Document{}, NewNetworkError("failed to read configuration", err)
	}

	doc, err := document.Decode(body)
	if err != nil {
		return document.Document{}, NewParseError("invalid configuration document", err)
	}
	return doc, nil
}

// SaveConfig replaces the agent's configuration with doc. The response body
// is discarded.
func (c *Client) SaveConfig(ctx context.Context, doc document.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, PathConfig, data)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Login exchanges credentials for a bearer token. It does not store the
// token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, PathLogin, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, NewParseError("invalid login response", err)
	}
	if tok.AccessToken == "" {
		return nil, NewParseError("login response has no access_token", nil)
	}
	return &tok, nil
}

// Register creates an account and returns the agent's confirmation text.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode register request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, PathRegister, body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewNetworkError("failed to read register response", err)
	}
	return parseDetail(data), nil
}

// Download streams a log file into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, kind LogKind, w io.Writer) (int64, error) {
	path := kind.Path()
	if path == "" {
		return 0, fmt.Errorf("invalid log kind %q", kind)
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, NewNetworkError("download interrupted", err)
	}
	return n, nil
}

// LogStreamURL returns the websocket URL of the live log channel.
func (c *Client) LogStreamURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid agent URL %q: %w", c.BaseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + PathLogStream
	return u.String(), nil
}

// do performs one request. Non-2xx responses are turned into *APIError and
// their body closed; on success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, NewNetworkError("failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logging.LogRequest(requestID, method, req.URL.String())
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("agent unreachable", err)
	}
	logging.LogResponse(requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()
		return nil, NewStatusError(resp.StatusCode, data)
	}

	return resp, nil
}
