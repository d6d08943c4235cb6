package domain

import (
	"context"

	"github.com/paulmach/orb/geojson"
)

// HazardStore is the remote hazard API.
type HazardStore interface {
	// ListHazards returns the authoritative collection. No auth required.
	ListHazards(ctx context.Context) (*geojson.FeatureCollection, error)

	// CreateHazard persists a draft using a bearer token.
	CreateHazard(ctx context.Context, token string, draft Draft) (Hazard, error)
}

// IdentityProvider is the external login service.
type IdentityProvider interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool

	// AccessToken returns a short-lived token for audience. It may fail even
	// while authenticated.
	AccessToken(ctx context.Context, audience string) (string, error)
}

// ReportPublisher fans confirmed hazards out to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, h Hazard) error
}
