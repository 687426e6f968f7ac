package server

import (
	"testing"

	"github.com/propchat/propchat/internal/testutil"
	"github.com/propchat/propchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, accountId int) *Client {
	return NewClient(types.User{Id: accountId}, nil, nil, testutil.TestLogger(t))
}

// drainEvents empties the client's send queue without blocking.
func drainEvents(c *Client) []*ServerEvent {
	var events []*ServerEvent
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "user:42", UserRoom(42), "expected user room name")
	assert.Equal(t, "conversation:abc123", ConversationRoom("abc123"), "expected conversation room name")
}

func TestRoomManager_joinAndLeave(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	c := newTestClient(t, 1)

	rm.Join(c, "conversation:abc")
	assert.Equal(t, 1, rm.MemberCount("conversation:abc"), "expected one member after join")
	assert.Contains(t, c.trackedRooms(), "conversation:abc", "expected client to track the room")

	rm.Leave(c, "conversation:abc")
	assert.Equal(t, 0, rm.MemberCount("conversation:abc"), "expected no members after leave")
	assert.Empty(t, c.trackedRooms(), "expected client tracking to be cleared")
}

func TestRoomManager_joinAll(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	c := newTestClient(t, 1)

	rm.JoinAll(c, []string{"conversation:a", "conversation:b", "user:1"})
	assert.Equal(t, 1, rm.MemberCount("conversation:a"), "expected membership in first room")
	assert.Equal(t, 1, rm.MemberCount("conversation:b"), "expected membership in second room")
	assert.Equal(t, 1, rm.MemberCount("user:1"), "expected membership in user room")
	assert.Len(t, c.trackedRooms(), 3, "expected client to track all three rooms")
}

func TestRoomManager_broadcastSkipsSender(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	sender := newTestClient(t, 1)
	receiver := newTestClient(t, 2)
	outsider := newTestClient(t, 3)

	rm.Join(sender, "conversation:abc")
	rm.Join(receiver, "conversation:abc")
	rm.Join(outsider, "conversation:other")

	rm.Broadcast("conversation:abc", &ServerEvent{Event: EventUserTyping}, sender)

	assert.Empty(t, drainEvents(sender), "expected sender to be excluded from the broadcast")
	assert.Empty(t, drainEvents(outsider), "expected clients outside the room to receive nothing")

	received := drainEvents(receiver)
	assert.Len(t, received, 1, "expected one event for the other room member")
	assert.Equal(t, EventUserTyping, received[0].Event, "expected the broadcast event")
}

func TestRoomManager_broadcastNilSkip(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	a := newTestClient(t, 1)
	b := newTestClient(t, 2)

	rm.Join(a, "conversation:abc")
	rm.Join(b, "conversation:abc")

	rm.Broadcast("conversation:abc", &ServerEvent{Event: EventNewMessage}, nil)

	assert.Len(t, drainEvents(a), 1, "expected every member to receive the event")
	assert.Len(t, drainEvents(b), 1, "expected every member to receive the event")
}

func TestRoomManager_dropClient(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	c := newTestClient(t, 1)
	other := newTestClient(t, 2)

	rm.JoinAll(c, []string{"conversation:a", "conversation:b", "user:1"})
	rm.Join(other, "conversation:a")

	rm.DropClient(c)

	assert.Equal(t, 1, rm.MemberCount("conversation:a"), "expected the other member to remain")
	assert.Equal(t, 0, rm.MemberCount("conversation:b"), "expected empty room to be removed")
	assert.Equal(t, 0, rm.MemberCount("user:1"), "expected user room to be removed")
	assert.Empty(t, c.trackedRooms(), "expected client tracking to be cleared")
}

func TestRoomManager_dropClientWithoutRooms(t *testing.T) {
	rm := NewRoomManager(testutil.TestLogger(t))
	c := newTestClient(t, 1)

	rm.DropClient(c)
	assert.Empty(t, c.trackedRooms(), "expected no-op for a client that never joined a room")
}
