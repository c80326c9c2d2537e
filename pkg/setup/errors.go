package setup

import (
	"fmt"
	"io"
)

// ErrorType represents the type of setup error
type ErrorType int

const (
	// ErrorTypeConfig indicates a configuration file error
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeRemote indicates the space could not be reached or rejected the key
	ErrorTypeRemote
	// ErrorTypeFileSystem indicates a file system error
	ErrorTypeFileSystem
	// ErrorTypeValidation indicates an invalid answer
	ErrorTypeValidation
)

// SetupError represents a setup error with context
type SetupError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *SetupError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error
func NewConfigError(message string, cause error) *SetupError {
	return &SetupError{Type: ErrorTypeConfig, Message: message, Cause: cause}
}

// NewRemoteError creates a new remote error
func NewRemoteError(message string, cause error) *SetupError {
	return &SetupError{Type: ErrorTypeRemote, Message: message, Cause: cause}
}

// NewFileSystemError creates a new file system error
func NewFileSystemError(message string, cause error) *SetupError {
	return &SetupError{Type: ErrorTypeFileSystem, Message: message, Cause: cause}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *SetupError {
	return &SetupError{Type: ErrorTypeValidation, Message: message}
}

// Hint writes a followup hint for err, if it is a setup error
func Hint(w io.Writer, err error) {
	e, ok := err.(*SetupError)
	if !ok {
		return
	}
	switch e.Type {
	case ErrorTypeConfig:
		fmt.Fprintf(w, "Check the format of your configuration file and try again.\n")
	case ErrorTypeRemote:
		fmt.Fprintf(w, "Check the space domain and that the API key is valid (Personal Settings > API).\n")
	case ErrorTypeFileSystem:
		fmt.Fprintf(w, "Check file permissions and disk space.\n")
	case ErrorTypeValidation:
		fmt.Fprintf(w, "Check your input values and try again.\n")
	}
}
