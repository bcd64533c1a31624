package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/logging"
)

// AccountClient is the part of the API client used for logging in and
// registering.
type AccountClient interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, username, email, password string) (string, error)
}

// Authenticator runs the login and registration flows.
type Authenticator struct {
	client  AccountClient
	session *Session
}

// NewAuthenticator creates an authenticator that stores tokens in session.
func NewAuthenticator(client AccountClient, session *Session) *Authenticator {
	return &Authenticator{client: client, session: session}
}

// Login validates the form, then makes exactly one login request and stores
// the issued token. An invalid form is returned as FieldErrors without any
// request being made. A rejected login returns the API error; use
// api.DetailText for the message to display.
func (a *Authenticator) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if fe := ValidateLogin(email, password); !fe.OK() {
		return fe
	}

	tok, err := a.client.Login(ctx, email, password)
	if err != nil {
		logging.Warn("Login failed", zap.String("email", email), zap.Error(err))
		return err
	}

	if err := a.session.SetToken(tok.AccessToken); err != nil {
		return err
	}
	logging.Info("Logged in", zap.String("email", email), zap.String("token_type", tok.TokenType))
	return nil
}

// Register validates the form, then makes exactly one registration request
// and returns the agent's confirmation text.
func (a *Authenticator) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if fe := ValidateRegister(username, email, password); !fe.OK() {
		return "", fe
	}

	msg, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		logging.Warn("Registration failed", zap.String("username", username), zap.Error(err))
		return "", err
	}
	logging.Info("Registered", zap.String("username", username))
	return msg, nil
}

// Logout clears the stored token.
func (a *Authenticator) Logout() error {
	return a.session.Clear()
}
