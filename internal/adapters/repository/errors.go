package repository

import "errors"

// Sentinel kinds for preference storage errors.
var (
	ErrNotFound       = errors.New("preference not found")
	ErrEmptyKey       = errors.New("empty preference key")
	ErrUnknownBackend = errors.New("unknown preference backend")
	ErrClosed         = errors.New("store closed")
)
