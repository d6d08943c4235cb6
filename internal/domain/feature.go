package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature property keys.
const (
	PropID         = "id"
	PropHazardType = "hazardType"
	PropNotes      = "notes"
	PropCreatedAt  = "createdAt"
	PropMagnitude  = "mag"
	PropPending    = "pending"
	PropLocalID    = "localId"
)

// NewFeature renders a hazard as a GeoJSON point feature.
func NewFeature(h Hazard) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{h.Lng, h.Lat})
	if h.ID != "" {
		f.ID = h.ID
		f.Properties[PropID] = h.ID
	}
	f.Properties[PropHazardType] = h.Type.String()
	f.Properties[PropNotes] = h.Notes
	if !h.CreatedAt.IsZero() {
		f.Properties[PropCreatedAt] = h.CreatedAt.UTC().Format(time.RFC3339)
	}
	if h.Magnitude != nil {
		f.Properties[PropMagnitude] = *h.Magnitude
	}
	if h.Pending {
		f.Properties[PropPending] = true
		f.Properties[PropLocalID] = h.LocalID
	}
	return f
}

// HazardFromFeature parses a point feature back into a Hazard. Missing or
// malformed optional properties fall back to zero values.
func HazardFromFeature(f *geojson.Feature) (Hazard, error) {
	if f == nil {
		return Hazard{}, ErrNotPoint
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Hazard{}, ErrNotPoint
	}

	props := f.Properties
	h := Hazard{
		ID:        featureID(f),
		Lat:       pt.Lat(),
		Lng:       pt.Lon(),
		Notes:     props.MustString(PropNotes, ""),
		CreatedAt: parseTimeOrZero(props.MustString(PropCreatedAt, "")),
		Pending:   props.MustBool(PropPending, false),
		LocalID:   props.MustString(PropLocalID, ""),
	}
	h.Type, _ = ParseHazardType(props.MustString(PropHazardType, ""))
	if mag, ok := parseMagnitude(props[PropMagnitude]); ok {
		h.Magnitude = &mag
	}
	return h, nil
}

// HazardsFromCollection parses every point feature in fc, skipping features
// with other geometries.
func HazardsFromCollection(fc *geojson.FeatureCollection) []Hazard {
	if fc == nil {
		return nil
	}
	out := make([]Hazard, 0, len(fc.Features))
	for _, f := range fc.Features {
		h, err := HazardFromFeature(f)
		if err != nil {
			continue
		}
		out = append(out, h)
	}
	return out
}

// CloneCollection copies the feature slice so callers can append without
// touching the original. Features themselves are shared; they are never
// mutated after creation.
func CloneCollection(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	out.Features = append(make([]*geojson.Feature, 0, len(fc.Features)+1), fc.Features...)
	return out
}

// featureID prefers the "id" property and falls back to the feature id.
// Stores disagree on whether ids are strings or numbers.
func featureID(f *geojson.Feature) string {
	if v, ok := f.Properties[PropID]; ok && v != nil {
		return formatID(v)
	}
	if f.ID != nil {
		return formatID(f.ID)
	}
	return ""
}

func formatID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func parseTimeOrZero(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseMagnitude(v any) (float64, bool) {
	switch m := v.(type) {
	case float64:
		return m, true
	case int:
		return float64(m), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
