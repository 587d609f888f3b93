package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotConfigured is returned when the gateway has no database pool.
	ErrStoreNotConfigured = errors.New("leads: store not configured")

	// ErrUnknownVariant is returned for an unrecognised LEAD_FORM_VARIANT.
	ErrUnknownVariant = errors.New("leads: unknown form variant")

	errTrailingData = errors.New("leads: unexpected data after request body")
)

// ValidationError is a client-correctable rejection of a lead payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a backing-store failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("leads: %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Cause is the human-readable reason without the package prefix.
func (e *StoreError) Cause() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}
