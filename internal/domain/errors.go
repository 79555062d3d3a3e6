package domain

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by repositories when a uniqueness constraint is
// violated, e.g. two registrations racing on the same email.
var ErrConflict = errors.New("conflict")

// ValidationError reports a malformed or inconsistent input with the field it
// belongs to, so callers can surface field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
