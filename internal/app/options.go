package service

import (
	"time"

	"github.com/okian/lineup/internal/adapters/mq/worker"
	"github.com/okian/lineup/internal/domain/reveal"
	"github.com/okian/lineup/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPreferences sets the preference store. Without it preferences are
// neither read nor saved.
func WithPreferences(p Preferences) Option {
	return func(s *Service) {
		s.prefs = p
	}
}

// WithEvents sets the queue reveal events are published to.
func WithEvents(q EventQueue) Option {
	return func(s *Service) {
		s.events = q
	}
}

// WithViewers lets GetStats report connected viewers.
func WithViewers(v Viewers) Option {
	return func(s *Service) {
		s.viewers = v
	}
}

// WithRunner replaces the reveal task.
func WithRunner(r *worker.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithDefaultLabels sets the team names used when neither the request nor
// the stored preferences carry one.
func WithDefaultLabels(teamA, teamB string) Option {
	return func(s *Service) {
		if teamA != "" {
			s.labelA = teamA
		}
		if teamB != "" {
			s.labelB = teamB
		}
	}
}

// WithCompletionResetDelay sets how long "Generated" stays on the trigger.
func WithCompletionResetDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.resetDelay = d
		}
	}
}

// WithWait replaces the timer used for the completion reset.
func WithWait(fn worker.WaitFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.wait = fn
		}
	}
}

// WithSessionOptions passes options to every new reveal session.
func WithSessionOptions(opts ...reveal.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithIDGenerator replaces uuid session ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
