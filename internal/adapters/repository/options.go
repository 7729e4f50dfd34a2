package repository

import (
	"time"

	"github.com/okian/lineup/pkg/logger"
)

type storeOptions struct {
	ttl           time.Duration
	now           func() time.Time
	sweepInterval time.Duration
	keyPrefix     string
	log           logger.Logger
}

func defaultOptions() storeOptions {
	return storeOptions{
		ttl:           DefaultTTL,
		now:           time.Now,
		sweepInterval: time.Minute,
		keyPrefix:     "lineup:prefs:",
	}
}

// Option applies a configuration option to a Store.
type Option func(*storeOptions)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(o *storeOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSweepInterval sets how often the memory store evicts expired entries.
// Zero disables the background sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(o *storeOptions) {
		o.sweepInterval = d
	}
}

// WithKeyPrefix namespaces keys in shared backends.
func WithKeyPrefix(prefix string) Option {
	return func(o *storeOptions) {
		o.keyPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		o.log = l
	}
}
