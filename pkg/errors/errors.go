package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Detected before any filesystem change
	ErrScan      ErrorCode = "SCAN"
	ErrParse     ErrorCode = "PARSE"
	ErrReference ErrorCode = "REFERENCE"
	ErrCollision ErrorCode = "COLLISION"
	ErrCycle     ErrorCode = "CYCLE"

	// Editor session errors
	ErrEditor   ErrorCode = "EDITOR"
	ErrTempFile ErrorCode = "TEMP_FILE"

	// Apply-time errors, reported per operation
	ErrIO ErrorCode = "IO"
)

// Detail keys shared by the packages that build errors
const (
	DetailLine   = "line"
	DetailIndex  = "index"
	DetailPath   = "path"
	DetailTarget = "target"
	DetailIDs    = "ids"
)

// RendirError represents a structured error with code and details
type RendirError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RendirError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RendirError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RendirError) Is(target error) bool {
	var targetErr *RendirError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RendirError with the given code and message
func New(code ErrorCode, message string) *RendirError {
	return &RendirError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RendirError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RendirError {
	return &RendirError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RendirError
func Wrap(err error, code ErrorCode, message string) *RendirError {
	if err == nil {
		return nil
	}
	return &RendirError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RendirError {
	if err == nil {
		return nil
	}
	return &RendirError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RendirError) WithDetail(key string, value interface{}) *RendirError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RendirError) WithDetails(details map[string]interface{}) *RendirError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rendirErr *RendirError
	if errors.As(err, &rendirErr) {
		return rendirErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RendirError
func GetErrorCode(err error) ErrorCode {
	var rendirErr *RendirError
	if errors.As(err, &rendirErr) {
		return rendirErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RendirError
func GetErrorDetails(err error) map[string]interface{} {
	var rendirErr *RendirError
	if errors.As(err, &rendirErr) {
		return rendirErr.Details
	}
	return nil
}

// IsPreApply reports whether the error belongs to the class that is detected
// before any filesystem change is made
func IsPreApply(err error) bool {
	switch GetErrorCode(err) {
	case ErrScan, ErrParse, ErrReference, ErrCollision, ErrCycle,
		ErrEditor, ErrTempFile, ErrConfigLoad:
		return true
	}
	return false
}

// Message renders an error for the user: the messages of the chain without
// the bracketed codes
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RendirError
	if !errors.As(err, &re) {
		return err.Error()
	}
	if re.Wrapped == nil {
		return re.Message
	}
	return re.Message + ": " + Message(re.Wrapped)
}
