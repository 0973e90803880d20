package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bingoparty/bingoparty-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound buffer per client
	sendBufferSize = 64
)

// Client is a single websocket connection. A client starts unbound and
// becomes associated with a room hub and player once it sends join-room.
type Client struct {
	gateway     *Gateway
	conn        *websocket.Conn
	send        chan []byte
	closeOnce   sync.Once
	connectedAt time.Time

	mu       sync.RWMutex
	hub      *Hub
	playerID model.PlayerID
	roomID   model.RoomID
}

func newClient(gateway *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		gateway:     gateway,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// bind associates the client with a room hub after a successful join
func (c *Client) bind(hub *Hub, roomID model.RoomID, playerID model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hub = hub
	c.roomID = roomID
	c.playerID = playerID
}

func (c *Client) currentHub() *Hub {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hub
}

// PlayerID returns the bound player ID, empty until join-room succeeds
func (c *Client) PlayerID() model.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID returns the bound room ID, empty until join-room succeeds
func (c *Client) RoomID() model.RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// sendEvent delivers an event to this client only
func (c *Client) sendEvent(event string, payload any) {
	msg, err := encodeEvent(event, payload)
	if err != nil {
		c.gateway.logger.Error("ws send encode failed",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- msg:
	default:
		c.gateway.logger.Warn("ws message dropped - client buffer full",
			slog.String("event", event),
			slog.String("player_id", string(c.PlayerID())))
	}
}

// sendError delivers a private error event to this client
func (c *Client) sendError(message string) {
	c.sendEvent(EventError, ErrorPayload{Message: message})
}

// readPump reads envelopes from the connection and dispatches them to
// the gateway. It runs in its own goroutine per connection.
func (c *Client) readPump() {
	defer func() {
		if hub := c.currentHub(); hub != nil {
			hub.Unregister(c)
		}
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.logger.Warn("ws read error",
					slog.String("player_id", string(c.PlayerID())),
					slog.String("error", err.Error()))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendError("Invalid message format")
			continue
		}
		c.gateway.dispatch(c, env)
	}
}

// writePump writes queued messages to the connection and keeps it alive
// with periodic pings. It runs in its own goroutine per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
