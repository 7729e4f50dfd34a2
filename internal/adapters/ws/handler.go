package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/lineup/pkg/logger"
)

// Handler upgrades HTTP requests to viewer connections.
type Handler struct {
	hub        *Hub
	ctx        context.Context
	upgrader   websocket.Upgrader
	sendBuffer int
	log        logger.Logger
}

// NewHandler creates a handler. Client pumps live on ctx, not on the
// request context. An empty origin list or "*" accepts every origin.
func NewHandler(ctx context.Context, hub *Hub, allowedOrigins []string, sendBuffer int) *Handler {
	h := &Handler{
		hub:        hub,
		ctx:        ctx,
		sendBuffer: sendBuffer,
		log:        hub.log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			a = strings.TrimSpace(a)
			if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP upgrades the connection and starts the client pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := NewClient(uuid.New().String(), conn, h.hub, h.sendBuffer, h.log)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}
