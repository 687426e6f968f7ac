package server

import (
	"fmt"
	"log"
	"sync"
)

func UserRoom(accountId int) string {
	return fmt.Sprintf("user:%d", accountId)
}

func ConversationRoom(conversationId string) string {
	return "conversation:" + conversationId
}

// RoomManager associates live clients with named broadcast groups: one
// room per account and one per conversation. Membership is reconstructed
// at connect time, never persisted.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *log.Logger
}

func NewRoomManager(logger *log.Logger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[*Client]struct{}),
		log:   logger,
	}
}

func (rm *RoomManager) Join(c *Client, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.rooms[room] == nil {
		rm.rooms[room] = make(map[*Client]struct{})
	}
	rm.rooms[room][c] = struct{}{}

	c.addRoom(room)
}

func (rm *RoomManager) JoinAll(c *Client, rooms []string) {
	for _, room := range rooms {
		rm.Join(c, room)
	}
}

func (rm *RoomManager) Leave(c *Client, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.removeLocked(c, room)
	c.delRoom(room)
}

// DropClient removes the client from every room it joined, emptying
// rooms as needed. Safe to call for a client that never joined anything.
func (rm *RoomManager) DropClient(c *Client) {
	rooms := c.trackedRooms()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, room := range rooms {
		rm.removeLocked(c, room)
		c.delRoom(room)
	}
}

// Broadcast queues the event on every client in the room except skip.
func (rm *RoomManager) Broadcast(room string, ev *ServerEvent, skip *Client) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for client := range rm.rooms[room] {
		if client == skip {
			continue
		}

		if !client.queueEvent(ev) {
			rm.log.Printf("dropped %q event for session %s in room %q", ev.Event, client.sessionId, room)
		}
	}
}

func (rm *RoomManager) MemberCount(room string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return len(rm.rooms[room])
}

func (rm *RoomManager) removeLocked(c *Client, room string) {
	clients, ok := rm.rooms[room]
	if !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(rm.rooms, room)
	}
}
