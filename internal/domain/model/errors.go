package model

import "errors"

var (
	// ErrDuplicateIdentifier is returned when an identifier appears in more than one bucket.
	ErrDuplicateIdentifier = errors.New("duplicate identifier across buckets")
	// ErrNilAssignment is returned when no assignment is present.
	ErrNilAssignment = errors.New("nil assignment")
	// ErrEmptySource is returned when neither a URL nor a match id is given.
	ErrEmptySource = errors.New("source requires url or match_id")
	// ErrAmbiguousSource is returned when both a URL and a match id are given.
	ErrAmbiguousSource = errors.New("source accepts only one of url and match_id")
)
