// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")

	ErrEmailTaken    = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)
)

// ValidationError reports malformed or out-of-range input.
// Field is the wire name of the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}
