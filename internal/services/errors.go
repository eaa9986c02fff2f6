package services

import "errors"

// ErrNotOwner is returned when a caller operates on a resource owned by
// somebody else without admin rights.
var ErrNotOwner = errors.New("not the resource owner")

// ValidationError reports malformed or missing input. Detected before
// any mutation; a request that fails validation has no side effects.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(message string) error {
	return &ValidationError{Message: message}
}
