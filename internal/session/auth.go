package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

// AuthState is what the rest of the session may know about the login.
type AuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"-"`
}

// AuthGate wraps the identity provider. The token is fetched after login and
// may be absent while authenticated if the fetch is in flight or failed.
type AuthGate struct {
	provider domain.IdentityProvider
	audience string
	logger   *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewAuthGate creates a gate that requests tokens for audience.
func NewAuthGate(provider domain.IdentityProvider, audience string, logger *slog.Logger) *AuthGate {
	return &AuthGate{provider: provider, audience: audience, logger: logger}
}

// Login signs in and then fetches a token. A failed token fetch does not
// fail the login.
func (g *AuthGate) Login(ctx context.Context) error {
	if err := g.provider.Login(ctx); err != nil {
		return err
	}
	g.FetchToken(ctx)
	return nil
}

// Logout signs out and forgets the token.
func (g *AuthGate) Logout(ctx context.Context) error {
	g.setToken("")
	return g.provider.Logout(ctx)
}

// IsAuthenticated reports the provider's login status.
func (g *AuthGate) IsAuthenticated() bool {
	return g.provider.IsAuthenticated()
}

// FetchToken requests a fresh access token. Failures are logged and leave
// the token absent.
func (g *AuthGate) FetchToken(ctx context.Context) {
	if !g.provider.IsAuthenticated() {
		g.setToken("")
		return
	}
	token, err := g.provider.AccessToken(ctx, g.audience)
	if err != nil {
		g.logger.Warn("access token fetch failed", "audience", g.audience, "error", err)
		g.setToken("")
		return
	}
	g.setToken(token)
}

// Token returns the access token, or ErrUnauthenticated / ErrTokenUnavailable.
func (g *AuthGate) Token() (string, error) {
	if !g.provider.IsAuthenticated() {
		return "", domain.ErrUnauthenticated
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.token == "" {
		return "", domain.ErrTokenUnavailable
	}
	return g.token, nil
}

// FreshToken asks the provider for a token before returning it, so an
// expired token is replaced by the provider's cached or renewed one. The
// provider is not contacted while signed out.
func (g *AuthGate) FreshToken(ctx context.Context) (string, error) {
	if !g.provider.IsAuthenticated() {
		return "", domain.ErrUnauthenticated
	}
	g.FetchToken(ctx)
	return g.Token()
}

// State returns the current AuthState.
func (g *AuthGate) State() AuthState {
	authed := g.provider.IsAuthenticated()
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := AuthState{IsAuthenticated: authed}
	if authed {
		s.Token = g.token
	}
	return s
}

func (g *AuthGate) setToken(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}
