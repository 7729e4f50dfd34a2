package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	defaultSendBuffer = 256
)

// registry is the part of the hub a client talks back to.
type registry interface {
	Unregister(c *Client)
	Snapshot() ServerMessage
}

// Client is one websocket viewer.
type Client struct {
	ID   string
	Send chan ServerMessage

	conn        *websocket.Conn
	hub         registry
	log         logger.Logger
	connectedAt time.Time

	mu       sync.Mutex
	closed   bool
	sent     int64
	received int64
}

// NewClient creates a client with a send buffer of bufferSize messages.
func NewClient(id string, conn *websocket.Conn, hub registry, bufferSize int, log logger.Logger) *Client {
	if bufferSize <= 0 {
		bufferSize = defaultSendBuffer
	}
	return &Client{
		ID:          id,
		Send:        make(chan ServerMessage, bufferSize),
		conn:        conn,
		hub:         hub,
		log:         log,
		connectedAt: time.Now(),
	}
}

// ReadPump reads viewer frames until the connection fails or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn(ctx, "unexpected close", logger.String("client", c.ID), logger.Error(err))
			}
			return
		}
		c.mu.Lock()
		c.received++
		c.mu.Unlock()
		c.handle(msg)
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSnapshot:
		c.TrySend(c.hub.Snapshot())
	case MessageTypeHeartbeat:
		c.TrySend(ServerMessage{Type: MessageTypeHeartbeat, Payload: c.Stats(), Timestamp: time.Now()})
	default:
		c.TrySend(ServerMessage{
			Type:      MessageTypeError,
			Payload:   ErrorMessage{Code: "unknown_message_type", Message: fmt.Sprintf("unknown message type: %s", msg.Type)},
			Timestamp: time.Now(),
		})
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Debug(ctx, "write failed", logger.String("client", c.ID), logger.Error(err))
				return
			}
			c.mu.Lock()
			c.sent++
			c.mu.Unlock()
			metrics.RecordWSMessage()

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues msg without blocking. It returns false when the buffer is
// full or the client was closed.
func (c *Client) TrySend(msg ServerMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// close closes Send once; WritePump then sends a close frame.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Stats returns connection counters.
func (c *Client) Stats() ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnectionStats{
		ClientID:         c.ID,
		ConnectedAt:      c.connectedAt,
		MessagesSent:     c.sent,
		MessagesReceived: c.received,
		BufferSize:       cap(c.Send),
		BufferUsed:       len(c.Send),
	}
}
