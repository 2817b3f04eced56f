// Package errors provides the structured error type shared by docblocks
// packages. Every error carries a category and a stable code so callers can
// branch on the kind of failure without matching message strings.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	// ErrorTypeSourceUnavailable marks a story whose source code could not be
	// produced. It is a display state, never a failure of the render.
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeConfigurationConflict marks preview options that cannot be
	// honoured together and were downgraded.
	ErrorTypeConfigurationConflict ErrorType = "configuration_conflict"
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypeIO                    ErrorType = "io"
	ErrorTypeConfig                ErrorType = "config"
	ErrorTypeInternal              ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeSourceMissing     = "ERR_SOURCE_MISSING"
	ErrCodeToolbarMultiChild = "ERR_TOOLBAR_MULTI_CHILD"
	ErrCodeStoryNotFound     = "ERR_STORY_NOT_FOUND"
	ErrCodePageNotFound      = "ERR_PAGE_NOT_FOUND"
	ErrCodeInstanceNotFound  = "ERR_INSTANCE_NOT_FOUND"
	ErrCodeUnknownAction     = "ERR_UNKNOWN_ACTION"
	ErrCodeManifestInvalid   = "ERR_MANIFEST_INVALID"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound      = "ERR_FILE_NOT_FOUND"
	ErrCodeInternalError     = "ERR_INTERNAL"
)

// DocError is a structured error type with context.
type DocError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DocError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DocError with the same type and code.
func (e *DocError) Is(target error) bool {
	var t *DocError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *DocError) WithContext(key string, value interface{}) *DocError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// NewSourceUnavailableError creates the error attached to a story whose
// source could not be loaded.
func NewSourceUnavailableError(message string, cause error) *DocError {
	return &DocError{
		Type:    ErrorTypeSourceUnavailable,
		Code:    ErrCodeSourceMissing,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationConflictError creates a conflict error for options that
// were downgraded.
func NewConfigurationConflictError(code, message string) *DocError {
	return &DocError{
		Type:    ErrorTypeConfigurationConflict,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DocError {
	return &DocError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *DocError {
	return &DocError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DocError {
	return &DocError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *DocError {
	return &DocError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with type and code information. A nil err
// yields nil.
func Wrap(err error, errType ErrorType, code, message string) *DocError {
	if err == nil {
		return nil
	}

	return &DocError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsType reports whether err (or anything it wraps) is a DocError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DocError
	if errors.As(err, &de) {
		return de.Type == t
	}

	return false
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// Logger is the subset of logging.Logger the error handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler routes errors to the logger at a level chosen by error type.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err. Degradations (source unavailable, configuration
// conflicts, validation) log at warn level, everything else at error.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var de *DocError
	if !errors.As(err, &de) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch de.Type {
	case ErrorTypeSourceUnavailable, ErrorTypeConfigurationConflict, ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.Warn(ctx, de, "Degraded", "type", de.Type, "code", de.Code)
	default:
		h.logger.Error(ctx, de, "Error occurred", "type", de.Type, "code", de.Code)
	}
}
