package reveal

import "math/rand"

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used to pick tokens.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // display order only
	}
}
