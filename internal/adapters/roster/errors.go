package roster

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailure matches every *LoadFailure.
	ErrLoadFailure = errors.New("load failure")
	// ErrBaseURL is returned for an unusable backend address.
	ErrBaseURL = errors.New("invalid backend url")
)

// LoadFailure reports a backend request that did not produce usable data:
// a transport error, a non-2xx status or an explicit error payload.
type LoadFailure struct {
	Op     string
	Status int
	Reason string
	Err    error
}

func (e *LoadFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: load failure (status %d): %s", e.Op, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s: load failure: %s", e.Op, e.Reason)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoadFailure) hold for any LoadFailure.
func (e *LoadFailure) Is(target error) bool { return target == ErrLoadFailure }
