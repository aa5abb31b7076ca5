package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("transition not allowed from current status")
	ErrNotEligible     = errors.New("booking is not eligible for rating")
	ErrAlreadyRated    = errors.New("booking already rated by this user")
	ErrTokenUsed       = errors.New("check-in token already used")
	ErrBusy            = errors.New("resource is busy, retry later")
	ErrUnauthenticated = errors.New("invalid or missing identity token")
	ErrForbidden       = errors.New("actor is not allowed to perform this action")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientCapacityError carries the remaining capacity observed at the
// ledger so callers can offer "only N seats left".
type InsufficientCapacityError struct {
	ExperienceID string
	Requested    int
	Remaining    int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d, %d remaining", e.Requested, e.Remaining)
}
