package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestDescribeLocation_NilGeocoder(t *testing.T) {
	got := DescribeLocation(context.Background(), 47.6062, -122.3321, nil, discardLogger())
	assert.Equal(t, "47.6062, -122.3321", got)
}

func TestDescribeLocation_FormattedAddress(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{FormattedAddress: "Pike St, Seattle, Washington", PlaceName: "Pike St"}}

	got := DescribeLocation(context.Background(), 47.6, -122.3, geo, discardLogger())

	assert.Equal(t, "Pike St, Seattle, Washington", got)
	assert.Equal(t, 1, geo.calls)
}

func TestDescribeLocation_PlaceNameOnly(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{PlaceName: "Seattle"}}
	assert.Equal(t, "Seattle", DescribeLocation(context.Background(), 47.6, -122.3, geo, discardLogger()))
}

func TestDescribeLocation_ErrorFallsBack(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("api down")}
	assert.Equal(t, "47.6000, -122.3000", DescribeLocation(context.Background(), 47.6, -122.3, geo, discardLogger()))
}

func TestDescribeLocation_EmptyResultFallsBack(t *testing.T) {
	geo := &mockGeocoder{}
	assert.Equal(t, "1.0000, 2.0000", DescribeLocation(context.Background(), 1, 2, geo, discardLogger()))
}
