package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not act on the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned for failed logins.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-level detail for a rejected write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
