package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// EventType names a map engine event.
type EventType string

const (
	EventLoad           EventType = "load"
	EventViewportChange EventType = "move"
	EventClick          EventType = "click"
	EventPointerEnter   EventType = "mouseenter"
	EventPointerLeave   EventType = "mouseleave"
)

// ErrNoHandler is returned for events with no registered handler, e.g. a
// click arriving before the map has loaded.
var ErrNoHandler = errors.New("no handler for event")

// Event is a map engine callback payload. Only the fields for Type are set.
type Event struct {
	Type  EventType `json:"type"`
	Layer string    `json:"layer,omitempty"`

	Lat  float64 `json:"lat,omitempty"`
	Lng  float64 `json:"lng,omitempty"`
	Zoom float64 `json:"zoom,omitempty"`

	Feature *geojson.Feature `json:"feature,omitempty"`
}

// Handler reacts to one event type.
type Handler func(ctx context.Context, ev Event) error

// Handlers is the event-to-handler table.
type Handlers struct {
	mu    sync.RWMutex
	table map[EventType]Handler
}

// NewHandlers returns an empty table.
func NewHandlers() *Handlers {
	return &Handlers{table: make(map[EventType]Handler)}
}

// Register sets the handler for t, replacing any previous one.
func (h *Handlers) Register(t EventType, fn Handler) {
	h.mu.Lock()
	h.table[t] = fn
	h.mu.Unlock()
}

// Registered reports whether t has a handler.
func (h *Handlers) Registered(t EventType) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.table[t]
	return ok
}

// Dispatch runs the handler for ev.Type.
func (h *Handlers) Dispatch(ctx context.Context, ev Event) error {
	h.mu.RLock()
	fn, ok := h.table[ev.Type]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoHandler, ev.Type)
	}
	return fn(ctx, ev)
}
