package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Error codes for the analysis pipeline
const (
	// CodeData marks malformed or contradictory input rows (duplicate user
	// across variants, negative order values).
	CodeData = "DATA_ERROR"
	// CodeInvalidParameter marks out-of-range statistical parameters.
	CodeInvalidParameter = "INVALID_PARAMETER"
	// CodeInsufficientData marks a group or segment too small for the
	// requested test. Per-segment failures carry this code without aborting
	// unrelated analyses.
	CodeInsufficientData = "INSUFFICIENT_DATA"
	// CodeQualityGate marks a failed SRM or sample-size check. This is a
	// business-level signal, not a code defect.
	CodeQualityGate = "QUALITY_GATE"
	// CodeInternal is the fallback for wrapped foreign errors.
	CodeInternal = "INTERNAL_ERROR"
)

// Common error constructors

func Data(format string, args ...interface{}) *AppError {
	return Newf(CodeData, format, args...)
}

func InvalidParameter(format string, args ...interface{}) *AppError {
	return Newf(CodeInvalidParameter, format, args...)
}

func InsufficientData(format string, args ...interface{}) *AppError {
	return Newf(CodeInsufficientData, format, args...)
}

func QualityGate(format string, args ...interface{}) *AppError {
	return Newf(CodeQualityGate, format, args...)
}

// Predicates used by callers deciding whether a failure is fatal or a
// per-segment partial result.

func IsData(err error) bool             { return HasCode(err, CodeData) }
func IsInvalidParameter(err error) bool { return HasCode(err, CodeInvalidParameter) }
func IsInsufficientData(err error) bool { return HasCode(err, CodeInsufficientData) }
func IsQualityGate(err error) bool      { return HasCode(err, CodeQualityGate) }
