package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidID    = errors.New("invalid ID format")
	ErrEmptySeries  = errors.New("price series must not be empty")
)

// Error reason codes, machine-inspectable by callers
const (
	ReasonConfig    = "configuration_error"
	ReasonData      = "data_integrity_error"
	ReasonInvariant = "invariant_violation"
)

// ComponentError is a structured error carrying the failing component and a
// reason code, so callers can format or dispatch without parsing messages.
type ComponentError struct {
	Component string
	Reason    string
	Message   string
	Err       error
}

func (e *ComponentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Component, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Reason, e.Message)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// NewComponentError creates a structured component error
func NewComponentError(component, reason, message string, err error) *ComponentError {
	return &ComponentError{Component: component, Reason: reason, Message: message, Err: err}
}

// IsReason reports whether err is a ComponentError with the given reason code
func IsReason(err error, reason string) bool {
	var ce *ComponentError
	if errors.As(err, &ce) {
		return ce.Reason == reason
	}
	return false
}
