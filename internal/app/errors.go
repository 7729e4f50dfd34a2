package service

import "errors"

var (
	// ErrRevealInProgress is returned when a reveal is already generating,
	// running or showing its completion.
	ErrRevealInProgress = errors.New("reveal in progress")
	// ErrUnknownToken is returned when a withdrawn token is not on screen.
	ErrUnknownToken = errors.New("token not on screen")
	// ErrNoPreferences is returned when preferences are saved without a store.
	ErrNoPreferences = errors.New("no preference store configured")
)
