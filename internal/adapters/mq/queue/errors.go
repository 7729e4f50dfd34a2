package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("reveal event queue full")
	ErrClosed = errors.New("reveal event queue closed")
)

// Must turns a rejected enqueue into an error naming the cause.
func Must(q Queue, ok bool) error {
	if ok {
		return nil
	}
	if q.IsClosed() {
		return ErrClosed
	}
	return ErrFull
}
