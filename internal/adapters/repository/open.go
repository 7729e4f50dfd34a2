package repository

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Settings selects and locates a preference backend.
type Settings struct {
	Backend  string
	File     string
	RedisURL string
}

// Open creates the store named by settings.Backend.
func Open(ctx context.Context, settings Settings, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(ctx, opts...), nil
	case BackendFile:
		s, err := NewFileStore(settings.File, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := DialRedis(ctx, settings.RedisURL, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, settings.Backend)
	}
}
