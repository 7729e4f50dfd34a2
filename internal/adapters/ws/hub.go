// Package ws streams reveal events to browser viewers over websockets.
package ws

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lineup/internal/adapters/mq/queue"
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// ErrBroadcastFull is returned by Publish when the hub is not keeping up.
var ErrBroadcastFull = errors.New("broadcast buffer full")

// ErrHubStopped is returned by Publish after Run has returned.
var ErrHubStopped = errors.New("hub stopped")

// ViewFunc returns the current board for newly connected viewers.
type ViewFunc func() board.View

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	view ViewFunc
	log  logger.Logger

	totalConnections atomic.Int64
	totalMessages    atomic.Int64
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		view:       func() board.View { return board.View{} },
		log:        logger.Get().Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run is the hub's main loop. It closes every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.log.Info(ctx, "hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return
		case c := <-h.register:
			h.registerClient(ctx, c)
		case c := <-h.unregister:
			h.unregisterClient(ctx, c)
		case msg := <-h.broadcast:
			h.broadcastMessage(ctx, msg)
		}
	}
}

// Register adds a client. The client first receives the current board.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Snapshot wraps the current board in a snapshot frame.
func (h *Hub) Snapshot() ServerMessage {
	return ServerMessage{Type: MessageTypeSnapshot, Payload: h.view(), Timestamp: time.Now()}
}

// Publish queues a reveal event for every client without blocking.
func (h *Hub) Publish(ctx context.Context, e queue.Event) error { //nolint:gocritic // hugeParam: mirrors worker.Publisher
	msg := ServerMessage{Type: string(e.Type), Payload: e, Timestamp: e.TS}
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		metrics.RecordErrorByComponent("ws", "broadcast_full")
		return ErrBroadcastFull
	}
}

func (h *Hub) registerClient(ctx context.Context, c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.clientsMu.Unlock()

	h.totalConnections.Add(1)
	metrics.UpdateWSClients(n)
	c.TrySend(h.Snapshot())
	h.log.Info(ctx, "client connected", logger.String("client", c.ID), logger.Int("clients", n))
}

func (h *Hub) unregisterClient(ctx context.Context, c *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.clientsMu.Unlock()

	if !ok {
		return
	}
	c.close()
	metrics.UpdateWSClients(n)
	h.log.Info(ctx, "client disconnected", logger.String("client", c.ID), logger.Int("clients", n))
}

// broadcastMessage sends msg to every client; a client whose buffer is full
// is too slow and gets disconnected.
func (h *Hub) broadcastMessage(ctx context.Context, msg ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	dropped := 0
	for _, c := range clients {
		if c.TrySend(msg) {
			continue
		}
		dropped++
		metrics.RecordWSDropped()
		go h.Unregister(c)
	}
	h.totalMessages.Add(1)

	if dropped > 0 {
		h.log.Warn(ctx, "dropped slow clients", logger.Int("dropped", dropped))
	}
}

// ClientCount returns the number of active clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics returns hub counters.
func (h *Hub) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":     h.ClientCount(),
		"total_connections":  h.totalConnections.Load(),
		"total_messages":     h.totalMessages.Load(),
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.Info(ctx, "hub stopping", logger.Int("clients", len(h.clients)))
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	metrics.UpdateWSClients(0)
}
