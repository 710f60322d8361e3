// Package session holds the signed-in agent's bearer token and profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"agent-portal/internal/core"
	"agent-portal/internal/portal"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned when an operation needs a token and none is held.
var ErrNotAuthenticated = errors.New("not logged in")

// Authenticator is the part of the application service a Session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*portal.LoginResult, error)
	Me(ctx context.Context, token string) (*core.Agent, error)
}

// Session is the auth context shared by a front-end: the token, persisted
// through a TokenStore, and the profile of the agent it belongs to.
type Session struct {
	mu     sync.RWMutex
	auth   Authenticator
	store  TokenStore
	logger *zap.Logger

	token string
	agent *core.Agent
}

// New returns a signed-out session.
func New(auth Authenticator, store TokenStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{auth: auth, store: store, logger: logger}
}

// Restore loads the persisted token and fetches the profile it belongs to.
// The token is dropped when the server answers success=false or rejects it
// with 401/403; any other failure keeps the token without a profile. The
// upstream error, if any, is returned.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return nil
	}

	agent, err := s.auth.Me(ctx, token)
	if err == nil {
		s.set(token, agent)
		return nil
	}

	var apiErr *portal.APIError
	if portal.IsAuthError(err) || (errors.As(err, &apiErr) && apiErr.Unsuccessful()) {
		s.logger.Info("stored token rejected", zap.Error(err))
		if clearErr := s.clear(); clearErr != nil {
			return clearErr
		}
		return err
	}

	s.logger.Warn("profile fetch failed, keeping token", zap.Error(err))
	s.set(token, nil)
	return err
}

// Login exchanges credentials for a token, persists it and keeps the profile.
func (s *Session) Login(ctx context.Context, email, password string) (*portal.LoginResult, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(res.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	s.set(res.Token, res.Agent)
	s.logger.Debug("logged in", zap.Bool("profile", res.Agent != nil))
	return res, nil
}

// Logout forgets the token and profile. It succeeds when nothing is held.
func (s *Session) Logout() error {
	return s.clear()
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Agent returns a copy of the signed-in agent's profile, or nil.
func (s *Session) Agent() *core.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.agent == nil {
		return nil
	}
	a := *s.agent
	return &a
}

// IsAuthenticated reports whether a profile is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agent != nil
}

// RequireToken returns the token or ErrNotAuthenticated.
func (s *Session) RequireToken() (string, error) {
	if t := s.Token(); t != "" {
		return t, nil
	}
	return "", ErrNotAuthenticated
}

// Invalidate signs the session out when err is an upstream 401/403 and
// reports whether it did.
func (s *Session) Invalidate(err error) bool {
	if !portal.IsAuthError(err) {
		return false
	}
	if clearErr := s.clear(); clearErr != nil {
		s.logger.Warn("clear token", zap.Error(clearErr))
	}
	return true
}

func (s *Session) set(token string, agent *core.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.agent = agent
}

func (s *Session) clear() error {
	s.set("", nil)
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
