package models

import (
	"errors"
	"fmt"
)

// Common error types
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("operation conflicts with current state")
	ErrUnavailable  = errors.New("store unavailable")
)

// Error codes carried by AppError
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnavailable  = "STORE_UNAVAILABLE"
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func isSentinel(err error) bool {
	return err == ErrInvalidInput || err == ErrNotFound || err == ErrConflict || err == ErrUnavailable
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrConflictWithMsg creates a conflict error with custom message
func ErrConflictWithMsg(message string) error {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

// ErrUnavailableWithCause creates a store failure error. The cause stays
// reachable through errors.Is alongside ErrUnavailable.
func ErrUnavailableWithCause(message string, cause error) error {
	return &AppError{
		Code:    CodeUnavailable,
		Message: message,
		Err:     &unavailableError{cause: cause},
	}
}

type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string {
	if e.cause == nil {
		return ErrUnavailable.Error()
	}
	return e.cause.Error()
}

func (e *unavailableError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrUnavailable}
	}
	return []error{ErrUnavailable, e.cause}
}

// Violation codes reported by validation
const (
	RequiredField    = "RequiredField"
	LengthOutOfRange = "LengthOutOfRange"
	InvalidFormat    = "InvalidFormat"
)

// Violation is a single validation failure tied to one field
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every violation found on a candidate
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("validation failed: %s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("validation failed: %d violations", len(e.Violations))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// HasViolation reports whether field failed with the given code
func (e *ValidationError) HasViolation(field, code string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Code == code {
			return true
		}
	}
	return false
}
