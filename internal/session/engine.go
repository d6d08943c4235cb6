package session

import "context"

// Cursor is the pointer affordance over the map.
type Cursor string

const (
	CursorDefault Cursor = ""
	CursorPointer Cursor = "pointer"
)

// MapEngine is the rendering side of the map. Implementations draw; the
// session decides what.
type MapEngine interface {
	AddImage(name string, data []byte) error
	SetCursor(c Cursor)
	ShowPopup(p Popup)
	Render(l Layers)
}

// IconLoader fetches the image bytes for an icon identifier.
type IconLoader interface {
	LoadIcon(ctx context.Context, name string) ([]byte, error)
}

// Image is an icon registered with the map engine.
type Image struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// BusEngine implements MapEngine by publishing every call on a Bus, for
// renderers that live on the other side of a connection.
type BusEngine struct {
	bus *Bus
}

// NewBusEngine wraps bus.
func NewBusEngine(bus *Bus) *BusEngine {
	return &BusEngine{bus: bus}
}

func (e *BusEngine) AddImage(name string, data []byte) error {
	e.bus.Publish(Update{Kind: UpdateImage, Payload: Image{Name: name, Data: data}})
	return nil
}

func (e *BusEngine) SetCursor(c Cursor) {
	e.bus.Publish(Update{Kind: UpdateCursor, Payload: c})
}

func (e *BusEngine) ShowPopup(p Popup) {
	e.bus.Publish(Update{Kind: UpdatePopup, Payload: p})
}

func (e *BusEngine) Render(l Layers) {
	e.bus.Publish(Update{Kind: UpdateLayers, Payload: l})
}

type nopEngine struct{}

func (nopEngine) AddImage(string, []byte) error { return nil }
func (nopEngine) SetCursor(Cursor)              {}
func (nopEngine) ShowPopup(Popup)               {}
func (nopEngine) Render(Layers)                 {}
