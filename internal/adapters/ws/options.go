package ws

import "github.com/okian/lineup/pkg/logger"

// Option configures a Hub.
type Option func(*Hub)

// WithView sets the board source for snapshot frames.
func WithView(fn ViewFunc) Option {
	return func(h *Hub) {
		if fn != nil {
			h.view = fn
		}
	}
}

// WithBroadcastBuffer sets how many frames may wait for the hub loop.
func WithBroadcastBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.broadcast = make(chan ServerMessage, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}
