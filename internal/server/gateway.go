package server

import (
	"context"
	"errors"
	"log"

	"github.com/propchat/propchat/internal/chat"
	"github.com/propchat/propchat/internal/stats"
	"github.com/propchat/propchat/internal/types"
)

// ConversationService is the slice of the chat service the gateway needs:
// room auto-join at connect time and the mark_as_read mutation.
type ConversationService interface {
	ConversationIds(accountId int) ([]string, error)
	MarkConversationRead(conversationId string, accountId int) error
}

type stopReq struct {
	done chan struct{}
}

// Gateway is the boundary between the websocket transport and the rest
// of the system. It owns the connection registry and room membership and
// implements chat.Broadcaster for outbound fan-out.
type Gateway struct {
	log            *log.Logger
	svc            ConversationService
	registry       *ConnectionRegistry
	rooms          *RoomManager
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	registerChan   chan *Client
	deregisterChan chan *Client
	stop           chan stopReq
	done           chan struct{}
}

func NewGateway(logger *log.Logger, svc ConversationService, su stats.StatsProvider) (*Gateway, error) {
	for _, metric := range []string{
		"ActiveConnections",
		"OnlineUsers",
		"MessagesSent",
		"ConversationsStarted",
	} {
		su.RegisterMetric(metric)
	}

	return &Gateway{
		log:            logger,
		svc:            svc,
		registry:       NewConnectionRegistry(),
		rooms:          NewRoomManager(logger),
		stats:          su,
		clients:        make(map[*Client]struct{}),
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		stop:           make(chan stopReq),
		done:           make(chan struct{}),
	}, nil
}

func (g *Gateway) Run() {
	defer close(g.done)

	for {
		select {
		case client := <-g.registerChan:
			g.handleRegister(client)
		case client := <-g.deregisterChan:
			g.handleDeregister(client)
		case req := <-g.stop:
			g.log.Println("closing client sessions")
			for c := range g.clients {
				g.handleDeregister(c)
				c.stopClient()
			}

			close(req.done)
			return
		}
	}
}

// RegisterClient activates an authenticated connection: presence
// registration, the account's own room, and every conversation room the
// account currently participates in.
func (g *Gateway) RegisterClient(c *Client) {
	select {
	case g.registerChan <- c:
	case <-g.done:
	}
}

// DeregisterClient is idempotent; a connection that never fully
// registered still gets its cleanup attempted without error.
func (g *Gateway) DeregisterClient(c *Client) {
	select {
	case g.deregisterChan <- c:
	case <-g.done:
	}
}

func (g *Gateway) handleRegister(c *Client) {
	g.log.Printf("registering session %s for account %d", c.sessionId, c.user.Id)

	g.clients[c] = struct{}{}

	wasOnline := g.registry.IsOnline(c.user.Id)
	g.registry.Register(c.user.Id, c.sessionId)
	g.stats.Incr("ActiveConnections")
	if !wasOnline {
		g.stats.Incr("OnlineUsers")
	}

	g.rooms.Join(c, UserRoom(c.user.Id))

	ids, err := g.svc.ConversationIds(c.user.Id)
	if err != nil {
		// the session stays active with its user room; conversation
		// rooms can still be joined explicitly
		g.log.Println("auto-join conversations:", err)
		return
	}

	rooms := make([]string, 0, len(ids))
	for _, id := range ids {
		rooms = append(rooms, ConversationRoom(id))
	}
	g.rooms.JoinAll(c, rooms)
}

func (g *Gateway) handleDeregister(c *Client) {
	if _, ok := g.clients[c]; !ok {
		return
	}

	g.log.Printf("deregistering session %s for account %d", c.sessionId, c.user.Id)

	delete(g.clients, c)
	g.rooms.DropClient(c)
	g.registry.Unregister(c.user.Id, c.sessionId)
	g.stats.Decr("ActiveConnections")
	if !g.registry.IsOnline(c.user.Id) {
		g.stats.Decr("OnlineUsers")
	}
}

// dispatch handles one inbound event from an active connection. Called
// from the client's read goroutine; registry and rooms are safe for
// concurrent use.
func (g *Gateway) dispatch(c *Client, ev *ClientEvent) {
	switch {
	case ev.Join != nil:
		g.rooms.Join(c, ConversationRoom(ev.Join.ConversationId))
		c.queueEvent(&ServerEvent{
			Event:     EventJoinedConversation,
			Id:        ev.Id,
			Timestamp: Now(),
		})
	case ev.Leave != nil:
		g.rooms.Leave(c, ConversationRoom(ev.Leave.ConversationId))
		c.queueEvent(&ServerEvent{
			Event:     EventLeftConversation,
			Id:        ev.Id,
			Timestamp: Now(),
		})
	case ev.TypingStart != nil:
		g.relayTyping(c, ev.TypingStart.ConversationId, EventUserTyping)
	case ev.TypingStop != nil:
		g.relayTyping(c, ev.TypingStop.ConversationId, EventUserStoppedTyping)
	case ev.MarkAsRead != nil:
		g.handleMarkAsRead(c, ev)
	default:
		c.queueEvent(ErrInvalidEvent(ev.Id))
	}
}

// relayTyping is relay-only: nothing is persisted and the sender is
// excluded from the broadcast.
func (g *Gateway) relayTyping(c *Client, conversationId, event string) {
	g.rooms.Broadcast(ConversationRoom(conversationId), &ServerEvent{
		Event:     event,
		Timestamp: Now(),
		Typing: &TypingNotification{
			AccountId:      c.user.Id,
			ConversationId: conversationId,
		},
	}, c)
}

func (g *Gateway) handleMarkAsRead(c *Client, ev *ClientEvent) {
	conversationId := ev.MarkAsRead.ConversationId

	if err := g.svc.MarkConversationRead(conversationId, c.user.Id); err != nil {
		switch {
		case errors.Is(err, chat.ErrNotFound):
			c.queueEvent(ErrConversationNotFound(ev.Id))
		case errors.Is(err, chat.ErrForbidden):
			c.queueEvent(ErrNotParticipant(ev.Id))
		default:
			g.log.Println("mark conversation read:", err)
			c.queueEvent(ErrInternalError(ev.Id))
		}
		return
	}

	g.rooms.Broadcast(ConversationRoom(conversationId), &ServerEvent{
		Event:     EventMessagesRead,
		Timestamp: Now(),
		Read: &ReadNotification{
			AccountId:      c.user.Id,
			ConversationId: conversationId,
		},
	}, c)
}

// EmitNewMessage broadcasts a committed message to its conversation room.
func (g *Gateway) EmitNewMessage(conversationId string, msg types.Message) {
	g.rooms.Broadcast(ConversationRoom(conversationId), &ServerEvent{
		Event:     EventNewMessage,
		Timestamp: Now(),
		Message:   &msg,
	}, nil)
	g.stats.Incr("MessagesSent")
}

// EmitNewConversation notifies every session of an account about a
// conversation it has no room membership for yet.
func (g *Gateway) EmitNewConversation(accountId int, conv types.Conversation) {
	g.rooms.Broadcast(UserRoom(accountId), &ServerEvent{
		Event:        EventNewConversation,
		Timestamp:    Now(),
		Conversation: &conv,
	}, nil)
	g.stats.Incr("ConversationsStarted")
}

func (g *Gateway) IsOnline(accountId int) bool {
	return g.registry.IsOnline(accountId)
}

func (g *Gateway) OnlineCount() int {
	return g.registry.OnlineCount()
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	g.log.Println("shutting down gateway")

	req := stopReq{done: make(chan struct{})}
	select {
	case g.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
