// Package errors provides the shared error vocabulary for the application.
// Domain packages wrap these sentinels into more specific errors so that
// callers can branch on intent (not found, conflict, bad input) without
// depending on infrastructure details.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinels shared across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write lost against concurrent state
	// (e.g., optimistic update matched zero rows).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates invalid or missing startup configuration.
	// Errors wrapping this sentinel are fatal: the process must refuse to start.
	ErrConfiguration = errors.New("configuration error")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
