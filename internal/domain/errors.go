package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrValidation           = errors.New("validation error")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrDuplicateApplication = errors.New("duplicate application")
	ErrAlreadyDecided       = errors.New("application already decided")
	ErrJobAlreadyLocked     = errors.New("job already locked")
	ErrJobNotOpen           = errors.New("job not open")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAlreadyReleased      = errors.New("payment already released")
	// ErrConflict is returned when an optimistic version check loses to a concurrent writer.
	ErrConflict = errors.New("concurrent modification")
)

// Invalid wraps ErrValidation with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrUnauthorized with a caller-facing message.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// IllegalMove wraps ErrInvalidTransition naming the rejected move.
func IllegalMove(entity, from, to string) error {
	return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, entity, from, to)
}
