// Package shared provides domain types and errors used across all aggregates.
package shared

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation error")

	// ErrInvariant marks a domain-rule breach. Entity operations are otherwise
	// total; wrapping this sentinel is the only way they fail.
	ErrInvariant = errors.New("invariant violation")
)

// InvariantError builds an ErrInvariant-wrapped error with a rule description.
func InvariantError(rule string) error {
	return fmt.Errorf("%w: %s", ErrInvariant, rule)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvariant checks if the error is a domain invariant violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
