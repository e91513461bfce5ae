package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(connID int64, downloadID string) Notification {
	return Notification{
		ConnectionID: connID,
		ContentID:    "m1",
		DownloadID:   downloadID,
		Payload:      json.RawMessage(`{"type":"Finished","elapsed":1}`),
	}
}

func TestBus_PublishRoutesByConnection(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	chA := bus.Subscribe([]int64{1}, 4)
	chB := bus.Subscribe([]int64{2}, 4)

	bus.Publish(note(1, "d1"))

	n := <-chA
	assert.Equal(t, "d1", n.DownloadID)
	assert.Empty(t, chB)
}

func TestBus_SubscribeMultipleConnections(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ch := bus.Subscribe([]int64{1, 2}, 4)
	bus.Publish(note(1, "d1"))
	bus.Publish(note(2, "d2"))

	assert.Equal(t, "d1", (<-ch).DownloadID)
	assert.Equal(t, "d2", (<-ch).DownloadID)
}

func TestBus_DropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ch := bus.Subscribe([]int64{1}, 1)
	bus.Publish(note(1, "d1"))
	bus.Publish(note(1, "d2")) // buffer full; must not block

	assert.Equal(t, "d1", (<-ch).DownloadID)
	assert.Empty(t, ch)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ch := bus.Subscribe([]int64{1, 2}, 4)
	bus.Unsubscribe(ch)

	// The channel is closed and no longer receives.
	_, open := <-ch
	assert.False(t, open)

	bus.Publish(note(1, "d1"))
	bus.Publish(note(2, "d2"))
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe([]int64{1, 2}, 4)
	bus.Close()

	_, open := <-ch
	assert.False(t, open)

	// Absorbing: publishing and re-closing after Close are no-ops.
	bus.Publish(note(1, "d1"))
	bus.Close()

	late := bus.Subscribe([]int64{1}, 4)
	_, open = <-late
	assert.False(t, open)
}

func TestBus_UnsubscribeUnknownChannel(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	other := make(chan Notification)
	bus.Unsubscribe(other)

	// Still functional afterwards.
	ch := bus.Subscribe([]int64{1}, 1)
	bus.Publish(note(1, "d1"))
	require.Len(t, ch, 1)
}
