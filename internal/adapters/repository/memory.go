package repository

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value   string
	expires time.Time
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	opts storeOptions

	mu    sync.RWMutex
	items map[string]item

	stopChan chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewMemoryStore creates a memory store and starts its expiry sweep.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &MemoryStore{
		opts:     o,
		items:    make(map[string]item),
		stopChan: make(chan struct{}),
	}
	if o.sweepInterval > 0 {
		s.startSweeper(ctx)
	}
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) sweep() int {
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, it := range s.items {
		if !now.Before(it.expires) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || !s.opts.now().Before(it.expires) {
		return "", ErrNotFound
	}
	return it.value, nil
}

// Set stores value under key, restarting its TTL.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	s.items[key] = item{value: value, expires: s.opts.now().Add(s.opts.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}
