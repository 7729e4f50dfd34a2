// Package board holds the display state of the reveal console and applies
// reveal steps to it.
package board

import (
	"sync"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/reveal"
)

// Trigger labels.
const (
	TriggerIdle = "Generate Teams"
	TriggerBusy = "Generating..."
	TriggerDone = "Generated"
)

// Default team labels.
const (
	DefaultTeamALabel = "Team 1"
	DefaultTeamBLabel = "Team 2"
)

// Phase is the coarse display stage.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseRevealing  Phase = "revealing"
	PhaseComplete   Phase = "complete"
)

// Team is the rendered state of one team column.
type Team struct {
	Label  string   `json:"label"  yaml:"label"`
	Header string   `json:"header" yaml:"header"`
	Count  int      `json:"count"  yaml:"count"`
	Total  float64  `json:"total"  yaml:"total"`
	Cards  []string `json:"cards"  yaml:"cards"`
}

// Trigger is the generate control.
type Trigger struct {
	Label   string `json:"label"   yaml:"label"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Moving is the token currently travelling to its bucket.
type Moving struct {
	TokenID string        `json:"token_id"`
	Bucket  reveal.Bucket `json:"bucket"`
}

// View is a copy of the board.
type View struct {
	Version      uint64              `json:"version"              yaml:"-"`
	SessionID    string              `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Phase        Phase               `json:"phase"                yaml:"phase"`
	Tokens       []model.PlayerToken `json:"tokens"               yaml:"-"`
	TeamA        Team                `json:"team_a"               yaml:"team_a"`
	TeamB        Team                `json:"team_b"               yaml:"team_b"`
	Bench        []string            `json:"bench"                yaml:"bench,omitempty"`
	BenchVisible bool                `json:"bench_visible"        yaml:"-"`
	Trigger      Trigger             `json:"trigger"              yaml:"-"`
	Moving       *Moving             `json:"moving,omitempty"     yaml:"-"`
}

// Board is safe for concurrent use.
type Board struct {
	mu     sync.RWMutex
	roster []model.PlayerToken
	hidden map[string]bool
	view   View
	labelA string
	labelB string
}

// New creates an idle board with an enabled trigger.
func New(opts ...Option) *Board {
	b := &Board{
		hidden: map[string]bool{},
		labelA: DefaultTeamALabel,
		labelB: DefaultTeamBLabel,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.view = View{
		Phase:   PhaseIdle,
		TeamA:   Team{Label: b.labelA, Header: HeaderLabel(b.labelA, 0)},
		TeamB:   Team{Label: b.labelB, Header: HeaderLabel(b.labelB, 0)},
		Trigger: Trigger{Label: TriggerIdle, Enabled: true},
	}
	return b
}

// LoadRoster replaces the on-screen tokens and returns how many are shown.
func (b *Board) LoadRoster(tokens []model.PlayerToken) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roster = append([]model.PlayerToken(nil), tokens...)
	b.hidden = map[string]bool{}
	b.touch()
	return len(b.roster)
}

// Remove takes a token off the screen for good. It reports whether the token
// was on the roster.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.roster {
		if t.ID != id {
			continue
		}
		b.roster = append(b.roster[:i:i], b.roster[i+1:]...)
		delete(b.hidden, id)
		b.touch()
		return true
	}
	return false
}

// Tokens returns the visible tokens in roster order.
func (b *Board) Tokens() []model.PlayerToken {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible()
}

func (b *Board) visible() []model.PlayerToken {
	out := make([]model.PlayerToken, 0, len(b.roster))
	for _, t := range b.roster {
		if !b.hidden[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Busy reports whether the trigger is disabled.
func (b *Board) Busy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.view.Trigger.Enabled
}

// BeginGeneration disables the trigger while the assignment is fetched.
func (b *Board) BeginGeneration() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.view.Phase = PhaseGenerating
	b.view.Trigger = Trigger{Label: TriggerBusy, Enabled: false}
	b.touch()
}

// ResetTeams prepares the board for a new session: every roster token is
// shown again, both teams are emptied and the bench is hidden. Empty labels
// fall back to the board defaults.
func (b *Board) ResetTeams(sessionID, labelA, labelB string) {
	if labelA == "" {
		labelA = b.labelA
	}
	if labelB == "" {
		labelB = b.labelB
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.hidden = map[string]bool{}
	b.view.SessionID = sessionID
	b.view.Phase = PhaseRevealing
	b.view.TeamA = Team{Label: labelA, Header: HeaderLabel(labelA, 0)}
	b.view.TeamB = Team{Label: labelB, Header: HeaderLabel(labelB, 0)}
	b.view.Bench = nil
	b.view.BenchVisible = false
	b.view.Moving = nil
	b.touch()
}

// Move marks the drawn token as travelling toward its bucket.
func (b *Board) Move(step reveal.Step) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.view.Moving = &Moving{TokenID: step.Token.ID, Bucket: step.Bucket}
	b.touch()
}

// Apply renders a retired step: the card lands in its bucket, the team
// header is updated and the token is hidden. Unrouted tokens are only hidden.
func (b *Board) Apply(step reveal.Step) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch step.Bucket {
	case reveal.TeamA:
		applyTeam(&b.view.TeamA, step)
	case reveal.TeamB:
		applyTeam(&b.view.TeamB, step)
	case reveal.Bench:
		b.view.BenchVisible = true
		b.view.Bench = append(b.view.Bench, BenchLabel(step.Entry))
	case reveal.None:
	}

	b.hidden[step.Token.ID] = true
	b.view.Moving = nil
	b.touch()
}

func applyTeam(t *Team, step reveal.Step) {
	t.Count = step.Ordinal
	t.Total = step.Total
	t.Cards = append(t.Cards, CardLabel(step.Ordinal, step.Entry))
	t.Header = HeaderLabel(t.Label, t.Total)
}

// Complete marks the reveal finished. The trigger stays disabled until
// ResetTrigger.
func (b *Board) Complete() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.view.Phase = PhaseComplete
	b.view.Trigger = Trigger{Label: TriggerDone, Enabled: false}
	b.view.Moving = nil
	b.touch()
}

// ResetTrigger re-enables the trigger. A board that never got past
// generating returns to idle.
func (b *Board) ResetTrigger() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view.Phase == PhaseGenerating {
		b.view.Phase = PhaseIdle
	}
	b.view.Trigger = Trigger{Label: TriggerIdle, Enabled: true}
	b.touch()
}

// View returns a deep copy of the board.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v := b.view
	v.Tokens = b.visible()
	v.TeamA.Cards = append([]string(nil), b.view.TeamA.Cards...)
	v.TeamB.Cards = append([]string(nil), b.view.TeamB.Cards...)
	v.Bench = append([]string(nil), b.view.Bench...)
	if b.view.Moving != nil {
		m := *b.view.Moving
		v.Moving = &m
	}
	return v
}

// touch must be called with mu held.
func (b *Board) touch() { b.view.Version++ }
