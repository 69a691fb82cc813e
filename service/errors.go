package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAmountOutOfRange is wrapped by validation errors for amounts outside 1..max
	ErrAmountOutOfRange = errors.New("amount out of range")

	// ErrRateLimitExceeded is wrapped by validation errors for a second request on the same day
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUserNotFound is returned when an operation names a user that does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose username is taken
	ErrUserExists = errors.New("user already exists")

	// ErrInvariantViolation signals state that should be impossible, such as a second
	// log entry for the same scheduled reward. Nothing is applied when it is returned.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// ValidationError is returned when caller input breaks a business rule.
// No state is changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// ValidateAmount checks that amount lies within 1..maxAmount
func ValidateAmount(amount, maxAmount int64) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Message: "Amount must be greater than 0", Err: ErrAmountOutOfRange}
	}
	if amount > maxAmount {
		return &ValidationError{
			Field:   "amount",
			Message: fmt.Sprintf("Amount must be less or equal to %d", maxAmount),
			Err:     ErrAmountOutOfRange,
		}
	}
	return nil
}
