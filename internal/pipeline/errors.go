package pipeline

import "errors"

// ErrInsufficientSelection rejects a merge with fewer than two distinct
// persons, before anything is mutated.
var ErrInsufficientSelection = errors.New("merge requires at least two distinct persons")

// OrganizerWarning marks an album-assignment failure that happened after
// person associations were already committed. The pipeline result carries
// it; it never rolls back registry state.
type OrganizerWarning struct {
	Err error
}

func (w *OrganizerWarning) Error() string {
	return "album assignment failed: " + w.Err.Error()
}

func (w *OrganizerWarning) Unwrap() error { return w.Err }
