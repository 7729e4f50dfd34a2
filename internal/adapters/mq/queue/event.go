package queue

import (
	"time"

	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/reveal"
)

// EventType names a change on the reveal console.
type EventType string

// Event types in the order a reveal normally produces them.
const (
	EventRosterLoaded     EventType = "roster_loaded"
	EventGenerating       EventType = "generating"
	EventSessionStarted   EventType = "session_started"
	EventTokenDrawn       EventType = "token_drawn"
	EventTokenRetired     EventType = "token_retired"
	EventTokenWithdrawn   EventType = "token_withdrawn"
	EventSessionCompleted EventType = "session_completed"
	EventSessionFailed    EventType = "session_failed"
	EventTriggerReset     EventType = "trigger_reset"
)

// Event is one console change fanned out to live viewers. Board is the view
// after the change.
type Event struct {
	Type      EventType    `json:"type"`
	SessionID string       `json:"session_id,omitempty"`
	Step      *reveal.Step `json:"step,omitempty"`
	Board     *board.View  `json:"board,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	TS        time.Time    `json:"ts"`
}
