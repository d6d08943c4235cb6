package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(Update{Kind: UpdateCursor, Payload: CursorPointer})

	for _, ch := range []chan Update{a, b} {
		select {
		case u := <-ch:
			assert.Equal(t, UpdateCursor, u.Kind)
			assert.Equal(t, CursorPointer, u.Payload)
		default:
			t.Fatal("subscriber did not receive update")
		}
	}
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	for i := 0; i < 200; i++ {
		bus.Publish(Update{Kind: UpdateState})
	}

	assert.Len(t, ch, cap(ch))
}

func TestBus_UnsubscribeClosesOnce(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Unsubscribe(ch)
	bus.Unsubscribe(ch)
	bus.Publish(Update{Kind: UpdateState})

	_, open := <-ch
	assert.False(t, open)
}

func TestBusEngine_PublishesCalls(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	engine := NewBusEngine(bus)

	require.NoError(t, engine.AddImage(IconTree, []byte{1, 2}))
	engine.SetCursor(CursorPointer)
	engine.ShowPopup(Popup{Title: "Tree down"})
	engine.Render(Layers{})

	var kinds []UpdateKind
	for len(ch) > 0 {
		kinds = append(kinds, (<-ch).Kind)
	}
	assert.Equal(t, []UpdateKind{UpdateImage, UpdateCursor, UpdatePopup, UpdateLayers}, kinds)
}
