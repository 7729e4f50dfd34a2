package worker

import (
	"time"

	"github.com/okian/lineup/pkg/logger"
)

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithName sets the consumer name for identification and logging.
func WithName(name string) Option {
	return func(c *Consumer) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the consumer.
func WithLogger(l logger.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// RunnerOption applies a configuration option to the Runner.
type RunnerOption func(*Runner)

// WithStartDelay sets the pause before the first draw.
func WithStartDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.startDelay = d
		}
	}
}

// WithSettleDelay sets the pause between a draw and its retirement.
func WithSettleDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.settleDelay = d
		}
	}
}

// WithWait replaces the timer used for both delays.
func WithWait(fn WaitFunc) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.wait = fn
		}
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
