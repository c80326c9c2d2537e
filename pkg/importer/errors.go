package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies import failures
type ErrorKind int

const (
	// KindConfiguration is a batch-level problem found before any row is checked
	KindConfiguration ErrorKind = iota
	// KindValidation is a row that breaks a structural or required-field rule
	KindValidation
	// KindConversion is a row whose names cannot be resolved to remote identities
	KindConversion
	// KindCreation is a remote failure while creating issues
	KindCreation
	// KindInternal is a broken assumption between pipeline stages
	KindInternal
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindConversion:
		return "conversion"
	case KindCreation:
		return "creation"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a single-cause import failure with enough context to locate the row
type Error struct {
	Kind ErrorKind
	// Row is the 1-based template row, zero for batch-level errors
	Row        int
	Field      string
	Value      string
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	msg := e.Message
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	parts = append(parts, msg)

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

// Is checks if the error is of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConversion    = &Error{Kind: KindConversion}
	ErrCreation      = &Error{Kind: KindCreation}
	ErrInternal      = &Error{Kind: KindInternal}
)

// IsInternal reports whether err is an internal inconsistency rather than a user mistake
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func newConfigurationError(field, message string) *Error {
	return &Error{
		Kind:       KindConfiguration,
		Field:      field,
		Message:    message,
		Suggestion: "Make the field optional in the project settings or change it to a supported type",
	}
}

func newValidationError(row int, field, value, message string) *Error {
	return &Error{
		Kind:       KindValidation,
		Row:        row,
		Field:      field,
		Value:      value,
		Message:    message,
		Suggestion: "Fix the row in the template and run the import again",
	}
}

func newConversionError(row int, field, value, message string) *Error {
	return &Error{
		Kind:       KindConversion,
		Row:        row,
		Field:      field,
		Value:      value,
		Message:    message,
		Suggestion: "Run 'backlog-import fields' to list the names known to the project",
	}
}

func newCreationError(row int, message string, cause error) *Error {
	return &Error{
		Kind:    KindCreation,
		Row:     row,
		Message: message,
		Cause:   cause,
	}
}

func newInternalError(row int, message string) *Error {
	return &Error{
		Kind:       KindInternal,
		Row:        row,
		Message:    message,
		Suggestion: "Project metadata changed during the import; run it again",
	}
}
