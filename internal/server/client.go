package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/propchat/propchat/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket session for an authenticated account. An
// account may hold any number of them at once.
type Client struct {
	sessionId string
	conn      *websocket.Conn
	gateway   *Gateway
	log       *log.Logger
	user      types.User
	send      chan *ServerEvent
	rooms     map[string]struct{}
	roomsLock sync.RWMutex
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, gw *Gateway, l *log.Logger) *Client {
	return &Client{
		sessionId: uuid.NewString(),
		conn:      conn,
		gateway:   gw,
		log:       l,
		user:      user,
		send:      make(chan *ServerEvent, 256),
		rooms:     make(map[string]struct{}),
		stop:      make(chan struct{}),
	}
}

func (c *Client) SessionId() string {
	return c.sessionId
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("write exiting for session %s", c.sessionId)
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Printf("read exiting for session %s", c.sessionId)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrInvalidEvent(0))
			continue
		}

		c.gateway.dispatch(c, &ev)
	}
}

func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
	default:
		c.log.Printf("send queue full for session %s, dropping event", c.sessionId)
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// cleanup runs once on read exit, whether the connection was fully
// registered or not; the gateway side is idempotent.
func (c *Client) cleanup() {
	c.gateway.DeregisterClient(c)
	c.stopClient()
}

func (c *Client) addRoom(room string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	c.rooms[room] = struct{}{}
}

func (c *Client) delRoom(room string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	delete(c.rooms, room)
}

func (c *Client) trackedRooms() []string {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}

	return rooms
}
