package reveal

import "errors"

var (
	ErrNoAssignment   = errors.New("reveal: assignment is required")
	ErrAlreadyStarted = errors.New("reveal: session already started")
	ErrNotRunning     = errors.New("reveal: session is not running")
	ErrDrawPending    = errors.New("reveal: previous draw not retired")
	ErrNoPendingDraw  = errors.New("reveal: no draw to retire")
)
