package identity

import (
	"context"
	"errors"
	"sync"
)

// Static is a provider with a fixed token, for local development against an
// API that accepts a pre-issued token.
type Static struct {
	token string

	mu            sync.Mutex
	authenticated bool
}

// NewStatic returns a provider that hands out token for every audience.
// It starts signed in when token is non-empty.
func NewStatic(token string) *Static {
	return &Static{token: token, authenticated: token != ""}
}

func (s *Static) Login(context.Context) error {
	if s.token == "" {
		return errors.New("login: no static token configured")
	}
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

func (s *Static) Logout(context.Context) error {
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()
	return nil
}

func (s *Static) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Static) AccessToken(context.Context, string) (string, error) {
	if !s.IsAuthenticated() {
		return "", errors.New("access token: not signed in")
	}
	return s.token, nil
}
