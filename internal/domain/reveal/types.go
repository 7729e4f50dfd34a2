// Package reveal implements the reveal state machine: tokens are drawn one at
// a time in random order, classified against an assignment and accumulated
// per team. It performs no I/O and keeps no timers; callers drive it.
package reveal

import "github.com/okian/lineup/internal/domain/model"

// State is the lifecycle stage of a session.
type State int

const (
	// Idle sessions have not started drawing.
	Idle State = iota
	// Running sessions still have tokens to draw or a draw awaiting retirement.
	Running
	// Complete sessions accept no further draws.
	Complete
)

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name; unknown names decode to Idle.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = Running
	case "complete":
		*s = Complete
	default:
		*s = Idle
	}
	return nil
}

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Bucket is the destination of a drawn token.
type Bucket int

const (
	// None marks an unrouted token: it appears in no bucket of the assignment.
	None Bucket = iota
	TeamA
	TeamB
	Bench
)

func (b Bucket) String() string {
	switch b {
	case TeamA:
		return "team_a"
	case TeamB:
		return "team_b"
	case Bench:
		return "bench"
	default:
		return "none"
	}
}

// MarshalText encodes the bucket by name.
func (b Bucket) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText decodes a bucket name; unknown names decode to None.
func (b *Bucket) UnmarshalText(text []byte) error {
	switch string(text) {
	case "team_a":
		*b = TeamA
	case "team_b":
		*b = TeamB
	case "bench":
		*b = Bench
	default:
		*b = None
	}
	return nil
}

// IsTeam reports whether b carries an accumulator.
func (b Bucket) IsTeam() bool { return b == TeamA || b == TeamB }

// Accumulator is the running count and rating total of one team.
type Accumulator struct {
	Count int     `json:"count" yaml:"count"`
	Total float64 `json:"total" yaml:"total"`
}

// Add routes one rating into the accumulator and returns the new count.
func (a *Accumulator) Add(rating float64) int {
	a.Count++
	a.Total += rating
	return a.Count
}

// Step describes one draw and how it was routed.
type Step struct {
	// Seq is the 1-based draw number within the session.
	Seq    int               `json:"seq"`
	Token  model.PlayerToken `json:"token"`
	Bucket Bucket            `json:"bucket"`
	Entry  model.PlayerEntry `json:"entry"`
	// Ordinal is the team count after this token was added; zero outside teams.
	Ordinal int `json:"ordinal,omitempty"`
	// Total is the team total after this token was added.
	Total      float64 `json:"total,omitempty"`
	FirstBench bool    `json:"first_bench,omitempty"`
	// Remaining is the number of undrawn tokens once this one is removed.
	Remaining int `json:"remaining"`
}

// Routed reports whether the token matched any bucket.
func (s Step) Routed() bool { return s.Bucket != None }

// Snapshot is a copy of session state.
type Snapshot struct {
	ID        string      `json:"id"`
	State     State       `json:"state"`
	TeamA     Accumulator `json:"team_a"`
	TeamB     Accumulator `json:"team_b"`
	Benched   int         `json:"benched"`
	Unrouted  int         `json:"unrouted"`
	Withdrawn int         `json:"withdrawn"`
	Draws     int         `json:"draws"`
	Initial   int         `json:"initial"`
	Remaining []string    `json:"remaining"`
	Pending   string      `json:"pending,omitempty"`
}
