// Package hazardapi is the HTTP client for the hazard store.
package hazardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

const maxErrorBody = 4 << 10

// Client implements domain.HazardStore over the hazard REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ListHazards fetches the full collection. The API wraps it as
// {"type": ..., "geojson": FeatureCollection}; a bare FeatureCollection is
// also accepted.
func (c *Client) ListHazards(ctx context.Context) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/hazards", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "list")
	if err != nil {
		return nil, err
	}
	return decodeCollection(body)
}

// CreateHazard posts a draft with a bearer token. An empty token is rejected
// without a request.
func (c *Client) CreateHazard(ctx context.Context, token string, draft domain.Draft) (domain.Hazard, error) {
	if token == "" {
		return domain.Hazard{}, domain.ErrTokenUnavailable
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return domain.Hazard{}, fmt.Errorf("encode draft: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hazards", bytes.NewReader(payload))
	if err != nil {
		return domain.Hazard{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req, "create")
	if err != nil {
		return domain.Hazard{}, err
	}
	h, err := decodeHazard(body)
	if err != nil {
		return domain.Hazard{}, err
	}
	c.logger.Debug("hazard stored", "id", h.ID, "hazard_type", h.Type.String())
	return h, nil
}

func (c *Client) do(req *http.Request, method string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s hazards request: %w", method, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("hazard API status %d: %w", resp.StatusCode, domain.ErrUnauthenticated)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("hazard API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// Hazard API response types.

type envelope struct {
	Type    string          `json:"type"`
	GeoJSON json.RawMessage `json:"geojson"`
}

func decodeCollection(body []byte) (*geojson.FeatureCollection, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	raw := body
	if len(env.GeoJSON) > 0 && string(env.GeoJSON) != "null" {
		raw = env.GeoJSON
	} else if env.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode response: missing geojson collection")
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return fc, nil
}

func decodeHazard(body []byte) (domain.Hazard, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return domain.Hazard{}, fmt.Errorf("decode response: %w", err)
	}

	if probe.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(body)
		if err != nil {
			return domain.Hazard{}, fmt.Errorf("decode feature: %w", err)
		}
		return domain.HazardFromFeature(f)
	}

	var h domain.Hazard
	if err := json.Unmarshal(body, &h); err != nil {
		return domain.Hazard{}, fmt.Errorf("decode hazard: %w", err)
	}
	return h, nil
}
