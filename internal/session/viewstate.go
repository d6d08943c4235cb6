package session

import "sync"

// ViewState is where the map is looking.
type ViewState struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// ViewStateController owns the ViewState. The map engine guarantees values
// are in range, so updates are not validated.
type ViewStateController struct {
	mu    sync.RWMutex
	state ViewState
}

// NewViewStateController starts the session at initial.
func NewViewStateController(initial ViewState) *ViewStateController {
	return &ViewStateController{state: initial}
}

// OnViewportChange overwrites the view after a pan or zoom. The draft marker
// follows automatically because it reads Current.
func (c *ViewStateController) OnViewportChange(lat, lng, zoom float64) {
	c.mu.Lock()
	c.state = ViewState{Lat: lat, Lng: lng, Zoom: zoom}
	c.mu.Unlock()
}

// Current returns the latest view.
func (c *ViewStateController) Current() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
