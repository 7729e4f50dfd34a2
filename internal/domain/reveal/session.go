package reveal

import (
	"math/rand"
	"time"

	"github.com/okian/lineup/internal/domain/model"
)

type route struct {
	bucket Bucket
	entry  model.PlayerEntry
}

// Session is one reveal sequence over a fixed assignment. It is not safe for
// concurrent use; a single task owns it for its whole life.
type Session struct {
	id        string
	routes    map[string]route
	remaining []model.PlayerToken
	state     State
	rng       *rand.Rand

	teamA, teamB Accumulator
	benched      int
	unrouted     int
	withdrawn    int
	draws        int
	initial      int
	pending      *Step
}

// NewSession prepares a session over tokens. The assignment is indexed once;
// an identifier listed in several buckets resolves to team A, then team B,
// then bench.
func NewSession(id string, a *model.Assignment, tokens []model.PlayerToken, opts ...Option) (*Session, error) {
	if a == nil {
		return nil, ErrNoAssignment
	}

	s := &Session{
		id:        id,
		routes:    make(map[string]route, a.Size()),
		remaining: append([]model.PlayerToken(nil), tokens...),
		initial:   len(tokens),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // display order only
	}

	s.index(TeamA, a.TeamA)
	s.index(TeamB, a.TeamB)
	s.index(Bench, a.Bench)
	return s, nil
}

func (s *Session) index(b Bucket, entries []model.PlayerEntry) {
	for _, e := range entries {
		if _, ok := s.routes[e.Name]; ok {
			continue
		}
		s.routes[e.Name] = route{bucket: b, entry: e}
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle stage.
func (s *Session) State() State { return s.state }

// Start moves an Idle session to Running, or straight to Complete when there
// is nothing to draw.
func (s *Session) Start() error {
	if s.state != Idle {
		return ErrAlreadyStarted
	}
	if len(s.remaining) == 0 {
		s.state = Complete
		return nil
	}
	s.state = Running
	return nil
}

// Classify looks up the bucket of an identifier.
func (s *Session) Classify(id string) (Bucket, model.PlayerEntry) {
	r, ok := s.routes[id]
	if !ok {
		return None, model.PlayerEntry{}
	}
	return r.bucket, r.entry
}

// Draw picks one remaining token uniformly at random, removes it from the
// remaining set and routes it. The draw stays pending until Retire.
func (s *Session) Draw() (Step, error) {
	if s.state != Running {
		return Step{}, ErrNotRunning
	}
	if s.pending != nil {
		return Step{}, ErrDrawPending
	}

	i := s.rng.Intn(len(s.remaining))
	tok := s.remaining[i]
	last := len(s.remaining) - 1
	s.remaining[i] = s.remaining[last]
	s.remaining = s.remaining[:last]
	s.draws++

	bucket, entry := s.Classify(tok.ID)
	step := Step{
		Seq:       s.draws,
		Token:     tok,
		Bucket:    bucket,
		Entry:     entry,
		Remaining: len(s.remaining),
	}

	switch bucket {
	case TeamA:
		step.Ordinal = s.teamA.Add(entry.Rating)
		step.Total = s.teamA.Total
	case TeamB:
		step.Ordinal = s.teamB.Add(entry.Rating)
		step.Total = s.teamB.Total
	case Bench:
		s.benched++
		step.FirstBench = s.benched == 1
	default:
		s.unrouted++
	}

	s.pending = &step
	return step, nil
}

// Retire completes the pending draw. When nothing remains the session
// becomes Complete.
func (s *Session) Retire() (Step, error) {
	if s.pending == nil {
		return Step{}, ErrNoPendingDraw
	}
	step := *s.pending
	s.pending = nil
	if len(s.remaining) == 0 {
		s.state = Complete
	}
	return step, nil
}

// Withdraw removes an undrawn token from the remaining set. It reports
// whether the token was found.
func (s *Session) Withdraw(id string) bool {
	if s.state == Complete {
		return false
	}
	for i, t := range s.remaining {
		if t.ID != id {
			continue
		}
		s.remaining = append(s.remaining[:i], s.remaining[i+1:]...)
		s.withdrawn++
		if s.state == Running && s.pending == nil && len(s.remaining) == 0 {
			s.state = Complete
		}
		return true
	}
	return false
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		TeamA:     s.teamA,
		TeamB:     s.teamB,
		Benched:   s.benched,
		Unrouted:  s.unrouted,
		Withdrawn: s.withdrawn,
		Draws:     s.draws,
		Initial:   s.initial,
		Remaining: model.TokenIDs(s.remaining),
	}
	if s.pending != nil {
		snap.Pending = s.pending.Token.ID
	}
	return snap
}

// Run drains a started session synchronously and returns every step in
// draw order. It is the timer-free form used by tests and batch callers.
func Run(s *Session) ([]Step, error) {
	if s.State() == Idle {
		if err := s.Start(); err != nil {
			return nil, err
		}
	}
	var steps []Step
	for s.State() == Running {
		if _, err := s.Draw(); err != nil {
			return steps, err
		}
		step, err := s.Retire()
		if err != nil {
			return steps, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
