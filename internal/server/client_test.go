package server

import (
	"testing"

	"github.com/propchat/propchat/internal/testutil"
	"github.com/propchat/propchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	user := types.User{Id: 1, FirstName: "Alice"}
	a := NewClient(user, nil, nil, testutil.TestLogger(t))
	b := NewClient(user, nil, nil, testutil.TestLogger(t))

	assert.NotEmpty(t, a.SessionId(), "expected a session id to be assigned")
	assert.NotEqual(t, a.SessionId(), b.SessionId(), "expected each session to get its own id")
	assert.Equal(t, user, a.user, "expected the user to be attached to the session")
}

func TestClient_queueEvent(t *testing.T) {
	c := newTestClient(t, 1)

	ok := c.queueEvent(&ServerEvent{Event: EventNewMessage})
	assert.True(t, ok, "expected event to be queued")

	events := drainEvents(c)
	assert.Len(t, events, 1, "expected one queued event")
	assert.Equal(t, EventNewMessage, events[0].Event, "expected the queued event")
}

func TestClient_queueEventDropsWhenFull(t *testing.T) {
	c := newTestClient(t, 1)

	for i := 0; i < cap(c.send); i++ {
		assert.True(t, c.queueEvent(&ServerEvent{Event: EventNewMessage}), "expected queue to accept event %d", i)
	}

	// a slow consumer never blocks the broadcaster
	ok := c.queueEvent(&ServerEvent{Event: EventNewMessage})
	assert.False(t, ok, "expected event to be dropped once the queue is full")
	assert.Len(t, drainEvents(c), cap(c.send), "expected only the queued events to remain")
}

func TestClient_roomTracking(t *testing.T) {
	c := newTestClient(t, 1)

	c.addRoom("conversation:a")
	c.addRoom("conversation:b")
	assert.ElementsMatch(t, []string{"conversation:a", "conversation:b"}, c.trackedRooms(), "expected both rooms tracked")

	c.delRoom("conversation:a")
	assert.Equal(t, []string{"conversation:b"}, c.trackedRooms(), "expected only the remaining room")

	c.delRoom("conversation:missing")
	assert.Equal(t, []string{"conversation:b"}, c.trackedRooms(), "expected deleting an untracked room to be a no-op")
}

func TestClient_stopClientIdempotent(t *testing.T) {
	c := newTestClient(t, 1)

	c.stopClient()
	assert.NotPanics(t, c.stopClient, "expected repeated stop to be safe")

	select {
	case <-c.stop:
	default:
		t.Fatal("expected stop channel to be closed")
	}
}
