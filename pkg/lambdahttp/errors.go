package lambdahttp

import (
	"errors"
	"fmt"
)

// Common translation errors
var (
	// ErrInvalidEvent is returned when an incoming event is not a recognizable
	// API Gateway payload
	ErrInvalidEvent = errors.New("invalid lambda event")

	// ErrNotImplemented is returned by connection operations that have no
	// meaning on a simulated, single-shot connection
	ErrNotImplemented = errors.New("not implemented on simulated connection")

	// ErrTimerDuration is returned when a single-shot timer is requested with
	// a non-positive duration
	ErrTimerDuration = errors.New("timer duration must be positive")
)

// EventError describes why an event failed validation, including the payload
// version that was detected before the failure.
type EventError struct {
	Version PayloadVersion
	Field   string // Missing or malformed field, if known
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *EventError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s payload missing required field %q", e.Version, e.Field)
	}
	return fmt.Sprintf("%s payload rejected: %v", e.Version, e.Err)
}

// Unwrap returns the underlying error
func (e *EventError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidEvent
}

// Is reports whether the error matches the target error
func (e *EventError) Is(target error) bool {
	return target == ErrInvalidEvent || errors.Is(e.Err, target)
}

// missingFieldError creates an EventError for an absent identifying field
func missingFieldError(version PayloadVersion, field string) *EventError {
	return &EventError{Version: version, Field: field, Err: ErrInvalidEvent}
}
