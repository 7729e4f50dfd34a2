package ws

import "time"

// Message types sent to viewers besides the reveal event types.
const (
	MessageTypeSnapshot  = "snapshot"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeError     = "error"
)

// ServerMessage is one frame sent to a viewer.
type ServerMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is one frame received from a viewer.
type ClientMessage struct {
	Type string `json:"type"`
}

// ErrorMessage is the payload of an error frame.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats is the payload of a heartbeat frame.
type ConnectionStats struct {
	ClientID         string    `json:"client_id"`
	ConnectedAt      time.Time `json:"connected_at"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	BufferSize       int       `json:"buffer_size"`
	BufferUsed       int       `json:"buffer_used"`
}
