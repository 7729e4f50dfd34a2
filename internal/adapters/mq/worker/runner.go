package worker

import (
	"context"
	"time"

	"github.com/okian/lineup/internal/domain/reveal"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Default reveal pacing.
const (
	DefaultStartDelay  = 1000 * time.Millisecond
	DefaultSettleDelay = 4000 * time.Millisecond
)

// Sink receives the visible effects of a reveal, in order.
type Sink interface {
	// Drawn is called when a token starts moving toward its bucket.
	Drawn(ctx context.Context, step reveal.Step)
	// Retired is called after the settle delay, when the card lands.
	Retired(ctx context.Context, step reveal.Step)
	// Completed is called once the session is Complete.
	Completed(ctx context.Context, snap reveal.Snapshot)
}

// Withdrawer is an optional Sink extension for tokens that leave while a
// reveal runs. Before every draw the runner takes the pending ids out of the
// remaining set and reports each one that was still undrawn.
type Withdrawer interface {
	PendingWithdrawals() []string
	Withdrawn(ctx context.Context, id string)
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep waits on a timer and returns ctx.Err() if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Runner is the reveal task: it draws one token, waits for it to settle,
// retires it and only then draws the next.
type Runner struct {
	startDelay  time.Duration
	settleDelay time.Duration
	wait        WaitFunc
	logger      logger.Logger
}

// NewRunner creates a runner with the default pacing.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		startDelay:  DefaultStartDelay,
		settleDelay: DefaultSettleDelay,
		wait:        Sleep,
		logger:      logger.Get().Named("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives s to completion. An Idle session is started first. When ctx
// ends between steps Run returns its error and the session is left Running.
func (r *Runner) Run(ctx context.Context, s *reveal.Session, sink Sink) error {
	if s.State() == reveal.Idle {
		if err := s.Start(); err != nil {
			return err
		}
	}

	if s.State() == reveal.Running {
		if err := r.wait(ctx, r.startDelay); err != nil {
			return err
		}
	}

	w, _ := sink.(Withdrawer)
	for s.State() == reveal.Running {
		if w != nil {
			r.withdraw(ctx, s, w)
			if s.State() != reveal.Running {
				break
			}
		}

		step, err := s.Draw()
		if err != nil {
			return err
		}
		r.observe(ctx, s.ID(), step)
		sink.Drawn(ctx, step)

		if err := r.wait(ctx, r.settleDelay); err != nil {
			return err
		}

		step, err = s.Retire()
		if err != nil {
			return err
		}
		sink.Retired(ctx, step)
	}

	sink.Completed(ctx, s.Snapshot())
	return nil
}

func (r *Runner) withdraw(ctx context.Context, s *reveal.Session, w Withdrawer) {
	for _, id := range w.PendingWithdrawals() {
		if !s.Withdraw(id) {
			r.logger.Debug(ctx, "withdrawn token already drawn",
				logger.String("session", s.ID()),
				logger.String("token", id),
			)
			continue
		}
		w.Withdrawn(ctx, id)
	}
}

func (r *Runner) observe(ctx context.Context, sessionID string, step reveal.Step) {
	metrics.RecordDraw(step.Bucket.String())
	if step.Routed() {
		r.logger.Debug(ctx, "token drawn",
			logger.String("session", sessionID),
			logger.String("token", step.Token.ID),
			logger.String("bucket", step.Bucket.String()),
			logger.Int("remaining", step.Remaining),
		)
		return
	}
	metrics.RecordUnroutedToken()
	r.logger.Warn(ctx, "token matches no bucket",
		logger.String("session", sessionID),
		logger.String("token", step.Token.ID),
	)
}
