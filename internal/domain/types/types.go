// Package types contains request and response shapes shared by the HTTP API
// and its clients.
package types

import (
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/reveal"
)

// ConnectRequest asks the service to load a roster.
type ConnectRequest struct {
	URL     string `json:"url,omitempty"`
	MatchID string `json:"match_id,omitempty"`
}

// Source converts the request to a roster source.
func (r ConnectRequest) Source() model.Source {
	return model.Source{URL: r.URL, MatchID: r.MatchID}
}

// ConnectResponse lists the tokens now on screen.
type ConnectResponse struct {
	Count  int                 `json:"count"`
	Tokens []model.PlayerToken `json:"tokens"`
}

// GenerateRequest starts a reveal. An empty source reuses the connected one.
type GenerateRequest struct {
	URL        string `json:"url,omitempty"`
	MatchID    string `json:"match_id,omitempty"`
	TeamALabel string `json:"team_a_label,omitempty"`
	TeamBLabel string `json:"team_b_label,omitempty"`
}

// Source converts the request to a roster source.
func (r GenerateRequest) Source() model.Source {
	return model.Source{URL: r.URL, MatchID: r.MatchID}
}

// GenerateResponse acknowledges a started reveal.
type GenerateResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Tokens    int    `json:"tokens"`
}

// SessionResponse is the current board and, when one exists, the session.
type SessionResponse struct {
	Board   board.View       `json:"board"`
	Session *reveal.Snapshot `json:"session,omitempty"`
}

// Preferences are the persisted console inputs.
type Preferences struct {
	SheetURL  string `json:"sheet_url"  yaml:"sheet_url"`
	Team1Name string `json:"team1_name" yaml:"team1_name"`
	Team2Name string `json:"team2_name" yaml:"team2_name"`
}

// Stats summarizes service activity.
type Stats struct {
	SessionsStarted   int64  `json:"sessions_started"`
	SessionsCompleted int64  `json:"sessions_completed"`
	SessionsRejected  int64  `json:"sessions_rejected"`
	RosterLoads       int64  `json:"roster_loads"`
	RosterFailures    int64  `json:"roster_failures"`
	UnroutedTokens    int64  `json:"unrouted_tokens"`
	QueueLength       int    `json:"queue_length"`
	WSClients         int    `json:"ws_clients"`
	Running           bool   `json:"running"`
	Uptime            string `json:"uptime"`
}
