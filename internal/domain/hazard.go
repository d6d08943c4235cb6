package domain

import (
	"fmt"
	"time"
)

// HazardType is the closed set of hazard categories. HazardUnknown is the
// fallback arm for categories this client does not know about.
type HazardType int

const (
	HazardUnknown HazardType = iota
	HazardFloodedRoad
	HazardTreeDown
	HazardOther
)

var hazardTypeNames = map[HazardType]string{
	HazardFloodedRoad: "FLOODED_ROAD",
	HazardTreeDown:    "TREE_DOWN",
	HazardOther:       "OTHER",
}

var hazardTypeLabels = map[HazardType]string{
	HazardFloodedRoad: "Flooded road",
	HazardTreeDown:    "Tree down",
	HazardOther:       "Other",
}

// HazardTypes returns the selectable categories in display order.
func HazardTypes() []HazardType {
	return []HazardType{HazardFloodedRoad, HazardTreeDown, HazardOther}
}

// DefaultHazardType is the category a fresh report form starts with.
const DefaultHazardType = HazardFloodedRoad

// ParseHazardType looks value up among the known categories by exact match.
func ParseHazardType(value string) (HazardType, bool) {
	for t, name := range hazardTypeNames {
		if name == value {
			return t, true
		}
	}
	return HazardUnknown, false
}

// String returns the wire name, or "UNKNOWN" for the fallback arm.
func (t HazardType) String() string {
	if name, ok := hazardTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Label returns a human-readable category name.
func (t HazardType) Label() string {
	if label, ok := hazardTypeLabels[t]; ok {
		return label
	}
	return "Unknown hazard"
}

// Known reports whether t is one of the selectable categories.
func (t HazardType) Known() bool {
	_, ok := hazardTypeNames[t]
	return ok
}

// MarshalText encodes the wire name.
func (t HazardType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a wire name. Unrecognized names decode to
// HazardUnknown rather than failing.
func (t *HazardType) UnmarshalText(b []byte) error {
	*t, _ = ParseHazardType(string(b))
	return nil
}

// Hazard is a single reported incident. Hazards are immutable once created.
type Hazard struct {
	ID        string     `json:"id,omitempty"`
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Type      HazardType `json:"hazardType"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"createdAt"`
	Magnitude *float64   `json:"mag,omitempty"`

	// Set only on optimistic local copies.
	Pending bool   `json:"pending,omitempty"`
	LocalID string `json:"localId,omitempty"`
}

// Draft is a hazard the user is about to submit.
type Draft struct {
	Lat   float64    `json:"lat"`
	Lng   float64    `json:"lng"`
	Type  HazardType `json:"hazardType"`
	Notes string     `json:"notes"`
}

// Validate rejects drafts the store could never accept.
func (d Draft) Validate() error {
	if d.Lat < -90 || d.Lat > 90 {
		return fmt.Errorf("%w: latitude %g out of range", ErrInvalidDraft, d.Lat)
	}
	if d.Lng < -180 || d.Lng > 180 {
		return fmt.Errorf("%w: longitude %g out of range", ErrInvalidDraft, d.Lng)
	}
	if !d.Type.Known() {
		return fmt.Errorf("%w: unknown hazard type", ErrInvalidDraft)
	}
	return nil
}

// Speculative builds the best-effort local copy of a draft shown before the
// store confirms it.
func (d Draft) Speculative(localID string) Hazard {
	return Hazard{
		Lat:       d.Lat,
		Lng:       d.Lng,
		Type:      d.Type,
		Notes:     d.Notes,
		CreatedAt: clock.Now(),
		Pending:   true,
		LocalID:   localID,
	}
}
