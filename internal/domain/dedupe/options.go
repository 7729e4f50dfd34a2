package dedupe

// Option configures a Set.
type Option func(*Set)

// WithCapacity presizes the set for n identifiers.
func WithCapacity(n int) Option {
	return func(s *Set) {
		if n > 0 {
			s.seen = make(map[string]struct{}, n)
		}
	}
}

// WithNormalizer compares identifiers after applying fn.
func WithNormalizer(fn func(string) string) Option {
	return func(s *Set) {
		if fn != nil {
			s.normalize = fn
		}
	}
}
