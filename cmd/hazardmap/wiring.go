package main

import (
	"log/slog"

	"github.com/couchcryptid/hazard-map/internal/adapter/hazardapi"
	"github.com/couchcryptid/hazard-map/internal/adapter/icons"
	"github.com/couchcryptid/hazard-map/internal/adapter/identity"
	"github.com/couchcryptid/hazard-map/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-map/internal/config"
	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
	"github.com/couchcryptid/hazard-map/internal/session"
)

func newStore(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *hazardapi.Client {
	return hazardapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)
}

// newIdentity prefers a static token, then OAuth client credentials. With
// neither configured the user stays signed out.
func newIdentity(cfg *config.Config, logger *slog.Logger) (domain.IdentityProvider, bool) {
	switch {
	case cfg.AuthStaticToken != "":
		logger.Info("using static access token")
		return identity.NewStatic(cfg.AuthStaticToken), true
	case cfg.AuthTokenURL != "":
		logger.Info("using oauth client credentials", "token_url", cfg.AuthTokenURL, "audience", cfg.AuthAudience)
		return identity.NewClientCredentials(cfg.AuthTokenURL, cfg.AuthClientID, cfg.AuthClientSecret, cfg.APITimeout, logger), true
	default:
		logger.Info("no identity provider configured, reporting disabled")
		return identity.NewStatic(""), false
	}
}

// newGeocoder is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.MapboxEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
}

func newIconLoader(cfg *config.Config, logger *slog.Logger) *icons.Loader {
	return icons.NewLoader(cfg.IconBaseURL, cfg.APITimeout, logger)
}

func initialView(cfg *config.Config) session.ViewState {
	return session.ViewState{Lat: cfg.InitialLat, Lng: cfg.InitialLng, Zoom: cfg.InitialZoom}
}
