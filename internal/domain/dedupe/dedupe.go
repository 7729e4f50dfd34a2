// Package dedupe tracks player identifiers that have already been seen.
package dedupe

import "sync"

// Deduper records identifiers so repeats can be detected.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it if not.
	SeenAndRecord(id string) bool

	// Unrecord forgets id so that it can be recorded again.
	Unrecord(id string)

	// Size returns the number of recorded identifiers.
	Size() int
}

// Set is a Deduper backed by a map. Identifiers are compared after the
// configured normalization; by default they are compared verbatim.
type Set struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	normalize func(string) string
}

// New creates an empty identifier set.
func New(opts ...Option) *Set {
	s := &Set{
		normalize: func(id string) string { return id },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	return s
}

// SeenAndRecord reports whether id was already recorded and records it if not.
func (s *Set) SeenAndRecord(id string) bool {
	key := s.normalize(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	return false
}

// Unrecord forgets id.
func (s *Set) Unrecord(id string) {
	key := s.normalize(id)

	s.mu.Lock()
	delete(s.seen, key)
	s.mu.Unlock()
}

// Size returns the number of recorded identifiers.
func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Duplicates returns every identifier in ids that repeats an earlier one,
// in the order the repeats occur.
func Duplicates(ids []string, opts ...Option) []string {
	s := New(opts...)
	var dups []string
	for _, id := range ids {
		if s.SeenAndRecord(id) {
			dups = append(dups, id)
		}
	}
	return dups
}

// Unique returns ids without repeats, keeping the first occurrence of each.
func Unique(ids []string, opts ...Option) []string {
	s := New(opts...)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !s.SeenAndRecord(id) {
			out = append(out, id)
		}
	}
	return out
}
