package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/muurk/proxycfg/internal/config"
)

// TokenKey is the settings key the bearer token is stored under.
const TokenKey = "access_token"

// ErrNotLoggedIn is returned by Require when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in (run 'proxycfg login')")

// Session is the program-wide view of the stored token. It is safe for
// concurrent use.
type Session struct {
	mu       sync.RWMutex
	settings *config.Settings
}

// NewSession binds a session to loaded settings.
func NewSession(settings *config.Settings) *Session {
	return &Session{settings: settings}
}

// Token returns the stored token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.AccessToken
}

// Authenticated reports whether a non-empty token is stored.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Require returns ErrNotLoggedIn when no token is stored.
func (s *Session) Require() error {
	if !s.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// SetToken stores a token and persists the settings file.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.AccessToken = token
	if err := s.settings.Save(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *Session) Clear() error {
	return s.SetToken("")
}

// Settings returns the underlying settings. Callers must not change the
// token through it; use SetToken.
func (s *Session) Settings() *config.Settings {
	return s.settings
}

// reload re-reads the settings file and reports whether the token changed.
func (s *Session) reload() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.settings.AccessToken
	if err := s.settings.Reload(); err != nil {
		return before, false, err
	}
	return s.settings.AccessToken, s.settings.AccessToken != before, nil
}
