package domain

import (
	"errors"
	"fmt"
)

// RuleError represents a domain rule violation (duplicate role name,
// cyclic menu parent, invalid username, ...). Rule errors are recovered
// at the boundary of the mutating operation and turned into a structured
// failure result; they never escape as unhandled faults.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRuleError constructs a RuleError with a stable machine-readable code.
func NewRuleError(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

// IsRuleError reports whether err is (or wraps) a domain rule violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// AsRuleError unwraps err into a RuleError when possible.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ValidationError aggregates field-level input failures detected before
// any persistence or token work happens.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError reports whether err is a field-level validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
