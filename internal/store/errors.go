package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotPending is returned when a review-state transition is attempted
// on a certification that is no longer pending. The guard is enforced
// inside the conditional UPDATE/DELETE, so two racing admin decisions
// cannot both apply.
var ErrNotPending = errors.New("certification is not pending")
