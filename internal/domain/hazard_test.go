package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHazardType(t *testing.T) {
	tests := []struct {
		in   string
		want HazardType
		ok   bool
	}{
		{"FLOODED_ROAD", HazardFloodedRoad, true},
		{"TREE_DOWN", HazardTreeDown, true},
		{"OTHER", HazardOther, true},
		{"flooded_road", HazardUnknown, false},
		{"LANDSLIDE", HazardUnknown, false},
		{"", HazardUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseHazardType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestHazardType_UnknownFallback(t *testing.T) {
	assert.Equal(t, "UNKNOWN", HazardUnknown.String())
	assert.Equal(t, "Unknown hazard", HazardUnknown.Label())
	assert.False(t, HazardUnknown.Known())

	var h Hazard
	require.NoError(t, json.Unmarshal([]byte(`{"hazardType":"SINKHOLE","lat":1,"lng":2}`), &h))
	assert.Equal(t, HazardUnknown, h.Type)
}

func TestHazardTypes_DisplayOrder(t *testing.T) {
	assert.Equal(t, []HazardType{HazardFloodedRoad, HazardTreeDown, HazardOther}, HazardTypes())
	assert.Equal(t, HazardFloodedRoad, DefaultHazardType)
}

func TestDraft_Validate(t *testing.T) {
	valid := Draft{Lat: 47.6, Lng: -122.3, Type: HazardOther, Notes: "debris"}
	require.NoError(t, valid.Validate())

	badLat := valid
	badLat.Lat = 91
	assert.ErrorIs(t, badLat.Validate(), ErrInvalidDraft)

	badLng := valid
	badLng.Lng = -180.5
	assert.ErrorIs(t, badLng.Validate(), ErrInvalidDraft)

	badType := valid
	badType.Type = HazardUnknown
	assert.ErrorIs(t, badType.Validate(), ErrInvalidDraft)
}

func TestDraft_Speculative(t *testing.T) {
	fixed := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	d := Draft{Lat: 10, Lng: 20, Type: HazardTreeDown}
	h := d.Speculative("local-1")

	assert.Empty(t, h.ID)
	assert.True(t, h.Pending)
	assert.Equal(t, "local-1", h.LocalID)
	assert.Equal(t, fixed, h.CreatedAt)
	assert.Equal(t, HazardTreeDown, h.Type)
}

func TestDraft_MarshalsWireBody(t *testing.T) {
	d := Draft{Lat: 1.5, Lng: -2.5, Type: HazardOther, Notes: "debris on shoulder"}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":1.5,"lng":-2.5,"hazardType":"OTHER","notes":"debris on shoulder"}`, string(data))
}
