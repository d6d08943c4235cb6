package session

import "sync"

// UpdateKind names what changed in an Update.
type UpdateKind string

const (
	UpdateLayers UpdateKind = "layers"
	UpdatePopup  UpdateKind = "popup"
	UpdateCursor UpdateKind = "cursor"
	UpdateImage  UpdateKind = "image"
	UpdateNotice UpdateKind = "notice"
	UpdateState  UpdateKind = "state"
)

// Update is a UI change pushed to renderers.
type Update struct {
	Kind    UpdateKind `json:"type"`
	Payload any        `json:"payload"`
}

// Bus is a fan-out pub/sub for session updates.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Update]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Update]struct{})}
}

// Publish sends an update to all subscribers (non-blocking).
func (b *Bus) Publish(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives updates.
func (b *Bus) Subscribe() chan Update {
	ch := make(chan Update, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Update) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
