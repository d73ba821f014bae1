// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Common errors that services can return.
var (
	// ErrActionNotAllowed is returned by a reducer when an action is illegal in the current status.
	ErrActionNotAllowed = errors.New("action not allowed in current status")

	// ErrAmbiguousBounds is returned when clamped clip bounds would leave start at or after end.
	// Which side to adjust is an open product decision, so the update is rejected instead.
	ErrAmbiguousBounds = errors.New("ambiguous clip bounds: start would not precede end")

	// ErrNotClippable is returned when clipping is requested for something that cannot be clipped.
	ErrNotClippable = errors.New("current playable cannot be clipped")

	// ErrClipNotFound is returned when a requested clip cannot be found.
	ErrClipNotFound = errors.New("clip not found")

	// ErrNoPlayable is returned when an operation requires a loaded playable.
	ErrNoPlayable = errors.New("no playable loaded")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrClosed is returned when a closed component is used.
	ErrClosed = errors.New("component closed")

	// ErrScanCancelled is returned when a library scan is cancelled.
	ErrScanCancelled = errors.New("scan cancelled")
)

// Backend error codes, following the media error codes browsers report.
const (
	CodeAborted          = 1
	CodeNetwork          = 2
	CodeDecode           = 3
	CodeSourceNotSupport = 4
)

// Messages shown to users for backend failures.
const (
	MessageAborted     = "The audio stopped loading before it could play."
	MessageNetwork     = "A network error occurred. Please check your connection."
	MessageUnplayable  = "The audio can't be played."
	MessageUnavailable = "The audio can't be played right now."
)

// autoplayLockedMessage is the play error text reported when playback was attempted before a user gesture.
const autoplayLockedMessage = "playback was not within a user interaction"

// AudioErrorMessage maps a backend error code to a user-facing message.
func AudioErrorMessage(code int) string {
	switch code {
	case CodeAborted:
		return MessageAborted
	case CodeNetwork:
		return MessageNetwork
	case CodeDecode, CodeSourceNotSupport:
		return MessageUnplayable
	default:
		return MessageUnavailable
	}
}

// AudioBackendError represents an error reported by the audio backend.
// This wraps low-level decoder or device errors with a numeric code.
type AudioBackendError struct {
	Op      string // Operation that failed (e.g., "load", "play")
	URL     string // Source URL (if applicable)
	Code    int    // Error code (see Code* constants)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *AudioBackendError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("audio backend %s failed for '%s': %s (code: %d)", e.Op, e.URL, e.Message, e.Code)
	}
	return fmt.Sprintf("audio backend %s failed: %s (code: %d)", e.Op, e.Message, e.Code)
}

// Unwrap returns the underlying error.
func (e *AudioBackendError) Unwrap() error {
	return e.Err
}

// NewAudioBackendError creates a new AudioBackendError.
func NewAudioBackendError(op, url string, code int, message string, err error) *AudioBackendError {
	return &AudioBackendError{
		Op:      op,
		URL:     url,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAutoplayLockedError creates the play error a backend reports while output is locked.
func NewAutoplayLockedError(url string) *AudioBackendError {
	return NewAudioBackendError("play", url, 0, autoplayLockedMessage, nil)
}

// IsAutoplayLocked reports whether a play error signals an autoplay lock rather than a real failure.
func IsAutoplayLocked(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), autoplayLockedMessage)
}

// ErrorCode extracts the backend error code from err, or 0 when there is none.
func ErrorCode(err error) int {
	var backendErr *AudioBackendError
	if errors.As(err, &backendErr) {
		return backendErr.Code
	}
	return 0
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "ClipperService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
