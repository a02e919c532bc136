// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input provided")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrSequenceConflict = errors.New("event sequence conflict") // Concurrent append race; caller retries
	ErrDuplicateEntry   = errors.New("duplicate entry")         // For cases like creating a user with existing username
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
