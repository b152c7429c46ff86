// Package services provides the application services behind the HTTP layer.
package services

import "errors"

// Validation errors surface as HTTP 400.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyUserID    = errors.New("user ID cannot be empty")
	ErrEmptySource    = errors.New("source cannot be empty")
	ErrTriggerNil     = errors.New("sync trigger cannot be nil")
)

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyUserID) ||
		errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrTriggerNil)
}
