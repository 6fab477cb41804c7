// Package errors provides custom error types for the deployment chat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrTurnPending     = errors.New("a turn is already pending")
	ErrUnknownTurn     = errors.New("unknown turn id")
	ErrNoDeployment    = errors.New("no deployment configured")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
	ErrClientClosed    = errors.New("client is closed")
)

// ValidationError represents local input validation failure. It is raised
// before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StateError represents an operation attempted in an invalid session state,
// e.g. submitting a prompt while another turn is still pending.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Message)
}

// Is allows comparison with the ErrTurnPending sentinel
func (e *StateError) Is(target error) bool {
	if target == ErrTurnPending {
		return true
	}
	_, ok := target.(*StateError)
	return ok
}

// NewStateError creates a new StateError
func NewStateError(message string) *StateError {
	return &StateError{Message: message}
}

// APIError represents an upstream HTTP/protocol failure from the
// prediction or chat backend.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// TurnError formats the error the way it is stored on a failed turn:
// endpoint, status line and body separated by double spaces.
func (e *APIError) TurnError() string {
	return fmt.Sprintf("`%s`  %d %s  %s", e.Endpoint, e.StatusCode, e.Message, e.Body)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying the response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// ProcessingError represents a citation/metadata extraction failure on an
// otherwise successful response.
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("response processing error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("response processing error: %s", e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// NewProcessingError creates a new ProcessingError
func NewProcessingError(message string, cause error) *ProcessingError {
	return &ProcessingError{Message: message, Cause: cause}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// NetworkError represents a transport-level failure before any HTTP
// status was received.
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// IsAPIError reports whether err is (or wraps) an APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsProcessingError reports whether err is (or wraps) a ProcessingError
func IsProcessingError(err error) bool {
	var procErr *ProcessingError
	return errors.As(err, &procErr)
}

// IsStateError reports whether err is (or wraps) a StateError
func IsStateError(err error) bool {
	var stateErr *StateError
	return errors.As(err, &stateErr)
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
