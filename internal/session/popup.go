package session

import (
	"context"
	"log/slog"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

// ClickEvent is a pointer click on a rendered feature. Lng/Lat is the click
// point, which may lie in a wrapped copy of the world.
type ClickEvent struct {
	Lng     float64          `json:"lng"`
	Lat     float64          `json:"lat"`
	Feature *geojson.Feature `json:"feature"`
}

// Popup is a dismissible info box anchored at a hazard.
type Popup struct {
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	HazardID  string  `json:"hazardId,omitempty"`
	Title     string  `json:"title"`
	Notes     string  `json:"notes,omitempty"`
	Reported  string  `json:"reported"`
	Place     string  `json:"place"`
	Pending   bool    `json:"pending,omitempty"`
	Closeable bool    `json:"closeable"`
}

// PopupController turns pointer events on the symbol layer into popups and
// cursor changes. Popups are owned by the map engine once shown.
type PopupController struct {
	engine   MapEngine
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewPopupController creates a controller. geocoder may be nil.
func NewPopupController(engine MapEngine, geocoder domain.Geocoder, logger *slog.Logger) *PopupController {
	return &PopupController{engine: engine, geocoder: geocoder, logger: logger}
}

// HandleClick builds and shows the popup for a clicked feature.
func (c *PopupController) HandleClick(ctx context.Context, ev ClickEvent) (Popup, error) {
	h, err := domain.HazardFromFeature(ev.Feature)
	if err != nil {
		return Popup{}, err
	}
	pt := ev.Feature.Geometry.(orb.Point)

	p := Popup{
		Lng:       NormalizeLongitude(pt.Lon(), ev.Lng),
		Lat:       pt.Lat(),
		HazardID:  h.ID,
		Title:     titleFor(ev.Feature, h),
		Notes:     h.Notes,
		Reported:  reportedAt(h),
		Place:     domain.DescribeLocation(ctx, h.Lat, h.Lng, c.geocoder, c.logger),
		Pending:   h.Pending,
		Closeable: true,
	}
	c.engine.ShowPopup(p)
	return p, nil
}

// HandlePointerEnter shows the pointer cursor over a pin.
func (c *PopupController) HandlePointerEnter() {
	c.engine.SetCursor(CursorPointer)
}

// HandlePointerLeave restores the default cursor.
func (c *PopupController) HandlePointerLeave() {
	c.engine.SetCursor(CursorDefault)
}

// NormalizeLongitude shifts featureLng by multiples of 360 until it is within
// 180 degrees of clickLng, so the popup opens on the copy of the world that
// was clicked.
func NormalizeLongitude(featureLng, clickLng float64) float64 {
	d := clickLng - featureLng
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return featureLng
	}
	// Smallest whole-world shift toward the click that lands within 180.
	var worlds float64
	switch {
	case d > 180:
		worlds = math.Ceil((d - 180) / 360)
	case d < -180:
		worlds = math.Floor((d + 180) / 360)
	default:
		return featureLng
	}
	shifted := featureLng + 360*worlds
	if math.IsInf(shifted, 0) {
		return featureLng
	}
	return shifted
}

func titleFor(f *geojson.Feature, h domain.Hazard) string {
	if h.Type.Known() {
		return h.Type.Label()
	}
	if raw := f.Properties.MustString(domain.PropHazardType, ""); raw != "" {
		return raw
	}
	return h.Type.Label()
}

func reportedAt(h domain.Hazard) string {
	switch {
	case h.Pending:
		return "submitting…"
	case h.CreatedAt.IsZero():
		return "unknown time"
	default:
		return domain.TimeAgo(h.CreatedAt)
	}
}
