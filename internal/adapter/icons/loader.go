// Package icons fetches map pin images over HTTP.
package icons

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxIconBytes = 1 << 20

// Loader implements session.IconLoader by fetching {baseURL}/{name}.png.
type Loader struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a loader rooted at baseURL.
func NewLoader(baseURL string, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// LoadIcon returns the image bytes for name. Non-image responses are errors.
func (l *Loader) LoadIcon(ctx context.Context, name string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s.png", l.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch icon %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch icon %s: status %d", name, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("fetch icon %s: unexpected content type %q", name, ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read icon %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch icon %s: empty body", name)
	}
	if len(data) > maxIconBytes {
		return nil, fmt.Errorf("fetch icon %s: larger than %d bytes", name, maxIconBytes)
	}

	l.logger.Debug("icon loaded", "name", name, "bytes", len(data))
	return data, nil
}
