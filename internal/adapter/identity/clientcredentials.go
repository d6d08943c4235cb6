// Package identity provides domain.IdentityProvider implementations.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials signs in with an OAuth2 client-credentials grant. Tokens
// are cached and refreshed per audience by oauth2.ReuseTokenSource.
type ClientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	logger     *slog.Logger

	mu            sync.Mutex
	authenticated bool
	sources       map[string]oauth2.TokenSource
}

// NewClientCredentials creates a provider against tokenURL.
func NewClientCredentials(tokenURL, clientID, clientSecret string, timeout time.Duration, logger *slog.Logger) *ClientCredentials {
	return &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		sources:    make(map[string]oauth2.TokenSource),
	}
}

// Login verifies the client credentials by requesting a token with no
// audience.
func (p *ClientCredentials) Login(ctx context.Context) error {
	if _, err := p.fetch(ctx, ""); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	p.mu.Lock()
	p.authenticated = true
	p.mu.Unlock()
	p.logger.Info("signed in", "client_id", p.cfg.ClientID)
	return nil
}

// Logout forgets cached tokens.
func (p *ClientCredentials) Logout(_ context.Context) error {
	p.mu.Lock()
	p.authenticated = false
	p.sources = make(map[string]oauth2.TokenSource)
	p.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether Login has succeeded since the last Logout.
func (p *ClientCredentials) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated
}

// AccessToken returns a token scoped to audience.
func (p *ClientCredentials) AccessToken(ctx context.Context, audience string) (string, error) {
	if !p.IsAuthenticated() {
		return "", fmt.Errorf("access token: not signed in")
	}
	return p.fetch(ctx, audience)
}

func (p *ClientCredentials) fetch(ctx context.Context, audience string) (string, error) {
	tok, err := p.source(ctx, audience).Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("fetch token: empty access token")
	}
	return tok.AccessToken, nil
}

func (p *ClientCredentials) source(ctx context.Context, audience string) oauth2.TokenSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts, ok := p.sources[audience]; ok {
		return ts
	}

	cfg := p.cfg
	if audience != "" {
		cfg.EndpointParams = url.Values{"audience": {audience}}
	}
	// The token source keeps the context for later refreshes.
	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, p.httpClient)
	ts := oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx))
	p.sources[audience] = ts
	return ts
}
