package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRegistered means the serial exists but already carries a
	// pending or accepted warranty registration.
	ErrAlreadyRegistered = errors.New("serial already registered")

	// ErrConflict is a uniqueness violation (duplicate serial, category name, email).
	ErrConflict = errors.New("conflict")

	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReferenced is returned when a delete would orphan dependent rows.
	ErrReferenced = errors.New("resource is still referenced")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError reports malformed input. Value carries the offending
// input when it is useful to echo back (for example the serial that failed).
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SerialError ties a failure to the serial that caused it so the API can
// echo the serial back.
type SerialError struct {
	Serial string
	Err    error
}

func (e *SerialError) Error() string { return fmt.Sprintf("serial %s: %v", e.Serial, e.Err) }

func (e *SerialError) Unwrap() error { return e.Err }
