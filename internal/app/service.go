// Package service orchestrates the reveal console: it loads rosters, fetches
// assignments, runs reveal sessions and publishes their progress.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lineup/internal/adapters/mq/queue"
	"github.com/okian/lineup/internal/adapters/mq/worker"
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/reveal"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Roster is the backend the service reads players and assignments from.
type Roster interface {
	AttendingPlayers(ctx context.Context, src model.Source) ([]model.PlayerToken, error)
	Players(ctx context.Context) ([]model.Record, error)
	Matches(ctx context.Context) ([]model.Record, error)
	GenerateTeams(ctx context.Context, src model.Source) (*model.Assignment, error)
}

// Preferences persists the console inputs.
type Preferences interface {
	Load(ctx context.Context) (types.Preferences, error)
	Save(ctx context.Context, prefs types.Preferences) error
	SaveLocator(ctx context.Context, locator string) error
}

// EventQueue receives reveal events for live viewers.
type EventQueue interface {
	Enqueue(ctx context.Context, e queue.Event) bool
	Len(ctx context.Context) int
}

// Viewers reports how many live viewers are connected.
type Viewers interface {
	ClientCount() int
}

// Service runs at most one reveal at a time over a single board.
type Service struct {
	mu sync.Mutex

	roster  Roster
	board   *board.Board
	prefs   Preferences
	events  EventQueue
	viewers Viewers
	runner  *worker.Runner

	labelA      string
	labelB      string
	resetDelay  time.Duration
	wait        worker.WaitFunc
	sessionOpts []reveal.Option
	newID       func() string

	// busy covers generating, running and the completion display; inFlight
	// ends when the runner returns.
	busy     bool
	inFlight bool
	source   model.Source
	snap     *reveal.Snapshot
	// withdrawals wait for the runner to take them at the next draw.
	withdrawals []string

	baseCtx  context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	startedT time.Time

	sessionsStarted   atomic.Int64
	sessionsCompleted atomic.Int64
	sessionsRejected  atomic.Int64
	rosterLoads       atomic.Int64
	rosterFailures    atomic.Int64
	unrouted          atomic.Int64

	logger logger.Logger
}

// New constructs a Service over roster and b.
func New(roster Roster, b *board.Board, opts ...Option) *Service {
	s := &Service{
		roster:     roster,
		board:      b,
		labelA:     board.DefaultTeamALabel,
		labelB:     board.DefaultTeamBLabel,
		resetDelay: 2 * time.Second,
		wait:       worker.Sleep,
		newID:      uuid.NewString,
		baseCtx:    context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.runner == nil {
		s.runner = worker.NewRunner()
	}

	return s
}

// Start binds reveal sessions to ctx. Sessions started later are cancelled
// when ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.startedT = time.Now()
	s.logger.Info(ctx, "reveal service started",
		logger.String("team_a", s.labelA),
		logger.String("team_b", s.labelB),
		logger.Duration("reset_delay", s.resetDelay),
	)
	return nil
}

// Stop cancels any running reveal and waits for it to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info(context.Background(), "reveal service stopped")
}

// Wait blocks until the current reveal, including its trigger reset, is done.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Connect loads the roster for src onto the board. A failed load leaves the
// board untouched.
func (s *Service) Connect(ctx context.Context, src model.Source) (types.ConnectResponse, error) {
	if err := src.Validate(); err != nil {
		return types.ConnectResponse{}, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return types.ConnectResponse{}, ErrRevealInProgress
	}
	s.mu.Unlock()

	tokens, err := s.roster.AttendingPlayers(ctx, src)
	if err != nil {
		s.rosterFailures.Add(1)
		s.logger.Warn(ctx, "roster load failed",
			logger.String("source", src.String()),
			logger.Error(err),
		)
		return types.ConnectResponse{}, err
	}

	// A reveal may have started while the backend answered; its session owns
	// the tokens on screen.
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn(ctx, "roster discarded, reveal started meanwhile",
			logger.String("source", src.String()),
		)
		return types.ConnectResponse{}, ErrRevealInProgress
	}
	n := s.board.LoadRoster(tokens)
	s.source = src
	s.mu.Unlock()

	s.rosterLoads.Add(1)
	metrics.UpdateTokensOnScreen(n)

	if src.URL != "" && s.prefs != nil {
		if err := s.prefs.SaveLocator(ctx, src.URL); err != nil {
			s.logger.Warn(ctx, "saving locator failed", logger.Error(err))
		}
	}

	s.publish(ctx, queue.Event{Type: queue.EventRosterLoaded})
	s.logger.Info(ctx, "roster loaded",
		logger.String("source", src.String()),
		logger.Int("tokens", n),
	)
	return types.ConnectResponse{Count: n, Tokens: tokens}, nil
}

// Generate fetches an assignment and starts a reveal over the board's
// tokens. It returns once the session is running.
func (s *Service) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	src := req.Source()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.reject(ctx, "in_progress", ErrRevealInProgress)
		return types.GenerateResponse{}, ErrRevealInProgress
	}
	if src == (model.Source{}) {
		src = s.source
	}
	if err := src.Validate(); err != nil {
		s.mu.Unlock()
		s.reject(ctx, "bad_source", err)
		return types.GenerateResponse{}, err
	}
	s.busy = true
	s.inFlight = true
	runCtx := s.baseCtx
	s.mu.Unlock()

	s.board.BeginGeneration()
	s.publish(ctx, queue.Event{Type: queue.EventGenerating})

	assignment, err := s.roster.GenerateTeams(ctx, src)
	if err != nil {
		s.abort(ctx, "", "load_failure", err)
		return types.GenerateResponse{}, err
	}
	if err := assignment.Validate(); err != nil {
		s.abort(ctx, "", "duplicate_identifier", err)
		return types.GenerateResponse{}, err
	}

	id := s.newID()
	labelA, labelB := s.labels(ctx, req)
	s.board.ResetTeams(id, labelA, labelB)

	tokens := s.board.Tokens()
	sess, err := reveal.NewSession(id, assignment, tokens, s.sessionOpts...)
	if err == nil {
		err = sess.Start()
	}
	if err != nil {
		s.abort(ctx, id, "session", err)
		return types.GenerateResponse{}, err
	}

	snap := sess.Snapshot()
	s.mu.Lock()
	s.snap = &snap
	s.mu.Unlock()

	s.sessionsStarted.Add(1)
	metrics.RecordSessionStarted()
	s.publish(ctx, queue.Event{Type: queue.EventSessionStarted, SessionID: id})
	s.logger.Info(ctx, "reveal started",
		logger.String("session", id),
		logger.String("source", src.String()),
		logger.Int("tokens", len(tokens)),
		logger.Int("assigned", assignment.Size()),
	)

	s.wg.Add(1)
	go s.run(runCtx, sess)

	return types.GenerateResponse{SessionID: id, Status: sess.State().String(), Tokens: len(tokens)}, nil
}

// Withdraw takes a player off the screen. While a reveal is in flight the
// token leaves at the next draw if it has not been drawn yet; otherwise it is
// removed at once.
func (s *Service) Withdraw(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.inFlight {
		s.withdrawals = append(s.withdrawals, id)
		s.mu.Unlock()
		s.logger.Info(ctx, "withdrawal queued", logger.String("token", id))
		return nil
	}
	removed := s.board.Remove(id)
	s.mu.Unlock()

	if !removed {
		return ErrUnknownToken
	}
	metrics.UpdateTokensOnScreen(len(s.board.Tokens()))
	s.publish(ctx, queue.Event{Type: queue.EventTokenWithdrawn})
	s.logger.Info(ctx, "token withdrawn", logger.String("token", id))
	return nil
}

// labels picks the team names: request, then preferences, then defaults.
func (s *Service) labels(ctx context.Context, req types.GenerateRequest) (string, string) {
	a, b := req.TeamALabel, req.TeamBLabel
	if (a == "" || b == "") && s.prefs != nil {
		p, err := s.prefs.Load(ctx)
		if err != nil {
			s.logger.Warn(ctx, "loading preferences failed", logger.Error(err))
		}
		if a == "" {
			a = p.Team1Name
		}
		if b == "" {
			b = p.Team2Name
		}
	}
	if a == "" {
		a = s.labelA
	}
	if b == "" {
		b = s.labelB
	}
	return a, b
}

func (s *Service) run(ctx context.Context, sess *reveal.Session) {
	defer s.wg.Done()

	begun := time.Now()
	err := s.runner.Run(ctx, sess, &sink{s: s, sess: sess, begun: begun})

	s.mu.Lock()
	s.withdrawals = nil
	s.mu.Unlock()
	if err != nil {
		metrics.RecordSessionAborted()
		s.logger.Warn(ctx, "reveal aborted",
			logger.String("session", sess.ID()),
			logger.Error(err),
		)
		s.abort(context.WithoutCancel(ctx), sess.ID(), "aborted", err)
		return
	}

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	// the trigger keeps "Generated" for a while even if ctx ends
	_ = s.wait(ctx, s.resetDelay)

	s.board.ResetTrigger()
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	s.publish(context.WithoutCancel(ctx), queue.Event{Type: queue.EventTriggerReset, SessionID: sess.ID()})
}

// abort resets the trigger after a generation that produced no complete
// reveal.
func (s *Service) abort(ctx context.Context, sessionID, reason string, err error) {
	s.board.ResetTrigger()

	s.mu.Lock()
	s.busy = false
	s.inFlight = false
	s.withdrawals = nil
	s.mu.Unlock()

	if sessionID == "" {
		s.reject(ctx, reason, err)
	}
	s.publish(ctx, queue.Event{Type: queue.EventSessionFailed, SessionID: sessionID, Reason: err.Error()})
}

func (s *Service) reject(ctx context.Context, reason string, err error) {
	s.sessionsRejected.Add(1)
	metrics.RecordSessionRejected(reason)
	s.logger.Warn(ctx, "generate rejected",
		logger.String("reason", reason),
		logger.Error(err),
	)
}

// publish attaches the current board view and enqueues e. A full queue only
// costs viewers an update; the next event carries the whole board again.
func (s *Service) publish(ctx context.Context, e queue.Event) { //nolint:gocritic // hugeParam: built inline by callers
	if s.events == nil {
		return
	}
	if e.Board == nil {
		v := s.board.View()
		e.Board = &v
	}
	if ok := s.events.Enqueue(ctx, e); !ok {
		metrics.RecordErrorByComponent("service", "publish")
		s.logger.Warn(ctx, "reveal event dropped",
			logger.String("type", string(e.Type)),
			logger.String("session", e.SessionID),
		)
	}
}

// View returns the board and the latest session snapshot.
func (s *Service) View() types.SessionResponse {
	resp := types.SessionResponse{Board: s.board.View()}

	s.mu.Lock()
	if s.snap != nil {
		snap := *s.snap
		resp.Session = &snap
	}
	s.mu.Unlock()

	return resp
}

// Players passes the backend player list through.
func (s *Service) Players(ctx context.Context) ([]model.Record, error) {
	return s.roster.Players(ctx)
}

// Matches passes the backend match list through.
func (s *Service) Matches(ctx context.Context) ([]model.Record, error) {
	return s.roster.Matches(ctx)
}

// Preferences returns the stored console inputs. Unset team names come back
// as the configured defaults.
func (s *Service) Preferences(ctx context.Context) (types.Preferences, error) {
	var p types.Preferences
	if s.prefs != nil {
		var err error
		if p, err = s.prefs.Load(ctx); err != nil {
			return types.Preferences{}, err
		}
	}
	if p.Team1Name == "" {
		p.Team1Name = s.labelA
	}
	if p.Team2Name == "" {
		p.Team2Name = s.labelB
	}
	return p, nil
}

// SavePreferences stores p.
func (s *Service) SavePreferences(ctx context.Context, p types.Preferences) error {
	if s.prefs == nil {
		return ErrNoPreferences
	}
	return s.prefs.Save(ctx, p)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	ctx := context.Background()

	s.mu.Lock()
	running := s.inFlight
	var uptime time.Duration
	if s.started {
		uptime = time.Since(s.startedT)
	}
	s.mu.Unlock()

	stats := types.Stats{
		SessionsStarted:   s.sessionsStarted.Load(),
		SessionsCompleted: s.sessionsCompleted.Load(),
		SessionsRejected:  s.sessionsRejected.Load(),
		RosterLoads:       s.rosterLoads.Load(),
		RosterFailures:    s.rosterFailures.Load(),
		UnroutedTokens:    s.unrouted.Load(),
		Running:           running,
		Uptime:            uptime.Truncate(time.Second).String(),
	}
	if s.events != nil {
		stats.QueueLength = s.events.Len(ctx)
		metrics.UpdateQueueSize(stats.QueueLength)
	}
	if s.viewers != nil {
		stats.WSClients = s.viewers.ClientCount()
	}
	return stats
}

// sink applies runner callbacks to the board. It runs on the reveal
// goroutine, which owns sess.
type sink struct {
	s     *Service
	sess  *reveal.Session
	begun time.Time
}

func (k *sink) snapshot() {
	snap := k.sess.Snapshot()
	k.s.mu.Lock()
	k.s.snap = &snap
	k.s.mu.Unlock()
}

func (k *sink) Drawn(ctx context.Context, step reveal.Step) {
	if !step.Routed() {
		k.s.unrouted.Add(1)
	}
	k.s.board.Move(step)
	k.snapshot()
	k.s.publish(ctx, queue.Event{Type: queue.EventTokenDrawn, SessionID: k.sess.ID(), Step: &step})
}

func (k *sink) Retired(ctx context.Context, step reveal.Step) {
	k.s.board.Apply(step)
	metrics.UpdateTokensOnScreen(len(k.s.board.Tokens()))
	k.snapshot()
	k.s.publish(ctx, queue.Event{Type: queue.EventTokenRetired, SessionID: k.sess.ID(), Step: &step})
}

func (k *sink) PendingWithdrawals() []string {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	ids := k.s.withdrawals
	k.s.withdrawals = nil
	return ids
}

func (k *sink) Withdrawn(ctx context.Context, id string) {
	k.s.board.Remove(id)
	metrics.UpdateTokensOnScreen(len(k.s.board.Tokens()))
	k.snapshot()
	k.s.publish(ctx, queue.Event{Type: queue.EventTokenWithdrawn, SessionID: k.sess.ID()})
	k.s.logger.Info(ctx, "token withdrawn",
		logger.String("session", k.sess.ID()),
		logger.String("token", id),
	)
}

func (k *sink) Completed(ctx context.Context, snap reveal.Snapshot) {
	k.s.board.Complete()
	k.s.mu.Lock()
	k.s.snap = &snap
	k.s.mu.Unlock()

	k.s.sessionsCompleted.Add(1)
	metrics.RecordSessionCompleted(time.Since(k.begun).Seconds())
	k.s.publish(ctx, queue.Event{Type: queue.EventSessionCompleted, SessionID: snap.ID})
	k.s.logger.Info(ctx, "reveal complete",
		logger.String("session", snap.ID),
		logger.Int("team_a", snap.TeamA.Count),
		logger.Int("team_b", snap.TeamB.Count),
		logger.Int("benched", snap.Benched),
		logger.Int("unrouted", snap.Unrouted),
	)
}
