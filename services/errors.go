package services

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when an entity belongs to another tenant.
	ErrAccessDenied = errors.New("till: access denied")
	// ErrNotFound is returned when an entity does not exist in the tenant's scope.
	ErrNotFound = errors.New("till: not found")
	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("till: invalid order transition")
	// ErrAlreadyClosed is returned when an order was finalized already.
	ErrAlreadyClosed = errors.New("till: order already closed")
	// ErrOrderLocked is returned when line items are edited outside pending.
	ErrOrderLocked = errors.New("till: order locked")
	// ErrStorageTimeout is returned when the database did not answer in time.
	ErrStorageTimeout = errors.New("till: storage timeout")
	// ErrStorageConflict is returned when the database aborted a write on a
	// concurrent update. Re-read the order before trying again.
	ErrStorageConflict = errors.New("till: storage conflict")

	ErrMissingTenant  = errors.New("till: missing tenant scope")
	ErrInvalidInput   = errors.New("till: invalid input")
	ErrAmountOverflow = errors.New("till: amount overflow")
	ErrRefundExceeded = errors.New("till: refund exceeds transaction amount")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("till: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable reports whether the caller may try again after re-reading state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrStorageConflict)
}

// IsStale reports whether the caller acted on an outdated view of the order.
func IsStale(err error) bool {
	return errors.Is(err, ErrAlreadyClosed) || errors.Is(err, ErrInvalidTransition)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
