package backlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// ErrorType represents the kind of failure reported by the remote service
type ErrorType int

const (
	// ErrorTypeAPI indicates a general API error
	ErrorTypeAPI ErrorType = iota
	// ErrorTypeNotFound indicates a resource was not found (404)
	ErrorTypeNotFound
	// ErrorTypeUnauthenticated indicates the API key was rejected (401)
	ErrorTypeUnauthenticated
	// ErrorTypeAccess indicates any other access failure (403)
	ErrorTypeAccess
	// ErrorTypeNetwork indicates a connectivity failure
	ErrorTypeNetwork
	// ErrorTypeConfiguration indicates the client could not be configured
	ErrorTypeConfiguration
)

// Error represents a classified remote-service error with a user-facing suggestion
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\n💡 %s", e.Suggestion))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinels for errors.Is comparisons
var (
	ErrNotFound        = &Error{Type: ErrorTypeNotFound}
	ErrUnauthenticated = &Error{Type: ErrorTypeUnauthenticated}
	ErrAccess          = &Error{Type: ErrorTypeAccess}
	ErrNetwork         = &Error{Type: ErrorTypeNetwork}
)

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Cause:      cause,
		Suggestion: fmt.Sprintf("Check that the %s exists and the API key's user can see it", resource),
	}
}

// NewUnauthenticatedError creates a new authentication error
func NewUnauthenticatedError(cause error) *Error {
	return &Error{
		Type:       ErrorTypeUnauthenticated,
		Message:    "authentication failed",
		StatusCode: http.StatusUnauthorized,
		Cause:      cause,
		Suggestion: "Check BACKLOG_API_KEY or space.api_key in .backlog-import.yml",
	}
}

// NewAccessError creates a new access error
func NewAccessError(message string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeAccess,
		Message:    message,
		StatusCode: http.StatusForbidden,
		Cause:      cause,
		Suggestion: "Check that the API key's user is a member of the project with permission to add issues",
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeNetwork,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check your internet connection and the space domain, then try again",
	}
}

// NewAPIError creates a new general API error
func NewAPIError(message string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeAPI,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check the Backlog service status and try again",
	}
}

// NewConfigurationError creates a new client configuration error
func NewConfigurationError(message string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeConfiguration,
		Message:    message,
		Cause:      cause,
		Suggestion: "Run 'backlog-import init' to create or update your configuration",
	}
}

// classifyError maps a transport error to a typed Error
func classifyError(err error, resource string) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return NewNotFoundError(resource, err)
		case http.StatusUnauthorized:
			return NewUnauthenticatedError(err)
		case http.StatusForbidden:
			return NewAccessError(fmt.Sprintf("access to %s denied", resource), err)
		default:
			apiErr := NewAPIError(fmt.Sprintf("request for %s failed (HTTP %d)", resource, httpErr.StatusCode), err)
			apiErr.StatusCode = httpErr.StatusCode
			return apiErr
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return NewAPIError(fmt.Sprintf("unexpected response for %s", resource), err)
	}

	return NewNetworkError(fmt.Sprintf("request for %s failed", resource), err)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
