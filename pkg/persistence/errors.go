package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncTriggerNotFound indicates no sync trigger exists for the given id.
	ErrSyncTriggerNotFound = errors.New("sync trigger not found")
)

// StoreError wraps storage failures with operation context so callers can
// branch on the failure class instead of matching strings.
type StoreError struct {
	Op  string // Operation being performed (e.g., "CreateActivity")
	Key string // Record identifier if applicable
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err originated in the persistence layer.
func IsStoreError(err error) bool {
	var storeErr *StoreError

	return errors.As(err, &storeErr)
}

// IsSyncTriggerNotFound reports whether err means the trigger does not exist.
func IsSyncTriggerNotFound(err error) bool {
	return errors.Is(err, ErrSyncTriggerNotFound)
}

// NewStoreError creates a StoreError with operation context.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}
