package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// DescribeLocation returns a place label for a hazard's popup. It prefers the
// geocoder's place name and degrades to formatted coordinates when geocoding
// is disabled, fails, or finds nothing.
func DescribeLocation(ctx context.Context, lat, lng float64, geocoder Geocoder, logger *slog.Logger) string {
	fallback := fmt.Sprintf("%.4f, %.4f", lat, lng)
	if geocoder == nil {
		return fallback
	}

	result, err := geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", lat,
			"lng", lng,
			"error", err,
		)
		return fallback
	}
	switch {
	case result.FormattedAddress != "":
		return result.FormattedAddress
	case result.PlaceName != "":
		return result.PlaceName
	default:
		return fallback
	}
}
