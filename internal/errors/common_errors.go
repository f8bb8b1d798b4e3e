package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeConfig      ErrorType = "CONFIG"

	// Ingestion and analytics taxonomy. Only ErrTypeNoDataAvailable is terminal for a run.
	ErrTypeMalformedSourceName ErrorType = "MALFORMED_SOURCE_NAME"
	ErrTypeMalformedRecord     ErrorType = "MALFORMED_RECORD"
	ErrTypeEmptySource         ErrorType = "EMPTY_SOURCE"
	ErrTypeInsufficientHistory ErrorType = "INSUFFICIENT_HISTORY"
	ErrTypeDivisionByZero      ErrorType = "DIVISION_BY_ZERO"
	ErrTypeNoDataAvailable     ErrorType = "NO_DATA_AVAILABLE"
)

// Sentinel errors matched with errors.Is against any AppError of the same type
var (
	ErrMalformedSourceName = &AppError{Type: ErrTypeMalformedSourceName, Message: "malformed source name"}
	ErrMalformedRecord     = &AppError{Type: ErrTypeMalformedRecord, Message: "malformed record"}
	ErrEmptySource         = &AppError{Type: ErrTypeEmptySource, Message: "empty source"}
	ErrInsufficientHistory = &AppError{Type: ErrTypeInsufficientHistory, Message: "insufficient history"}
	ErrDivisionByZero      = &AppError{Type: ErrTypeDivisionByZero, Message: "division by zero"}
	ErrNoDataAvailable     = &AppError{Type: ErrTypeNoDataAvailable, Message: "no data available"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// Helper functions for common error types

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewMalformedSourceNameError reports a source whose name does not encode a date and time
func NewMalformedSourceNameError(source string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedSourceName,
		fmt.Sprintf("source %q does not match YYYY-MM-DD_HH-MM-SS", source), cause).
		WithContext("source", source)
}

// NewMalformedRecordError reports an entry that failed schema validation
func NewMalformedRecordError(source string, index int, cause error) *AppError {
	return NewAppError(ErrTypeMalformedRecord,
		fmt.Sprintf("entry %d of %s is malformed", index, source), cause).
		WithContext("source", source).
		WithContext("entry", index)
}

// NewEmptySourceError reports a source with no entries
func NewEmptySourceError(source string) *AppError {
	return NewAppError(ErrTypeEmptySource, fmt.Sprintf("source %s has no entries", source), nil).
		WithContext("source", source)
}

// NewDivisionByZeroError reports a return computed against a zero base price
func NewDivisionByZeroError(symbol, metric string) *AppError {
	return NewAppError(ErrTypeDivisionByZero,
		fmt.Sprintf("%s of %s divides by a zero price", metric, symbol), nil).
		WithContext("symbol", symbol).
		WithContext("metric", metric)
}

// NewNoDataAvailableError reports a run where no source yielded any record
func NewNoDataAvailableError(sources, skipped int) *AppError {
	return NewAppError(ErrTypeNoDataAvailable,
		fmt.Sprintf("no records ingested from %d sources (%d skipped)", sources, skipped), nil).
		WithContext("sources", sources).
		WithContext("skipped", skipped)
}
