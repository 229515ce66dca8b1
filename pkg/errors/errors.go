// Package errors provides typed errors for the application
package errors

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeTransport
	ErrorTypeStorage
	ErrorTypeUnknownSource
	ErrorTypeInternal
)

// baseError is the base implementation for all error types
type baseError struct {
	msg string
}

func (e *baseError) Error() string {
	return e.msg
}

// ValidationError represents malformed user input, always recoverable
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// NotFoundError represents a missing record or registry entry
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg}}
}

// TransportError represents an HTTP or network failure from a source backend
type TransportError struct {
	baseError
	Source string
}

// NewTransportError creates a new TransportError carrying the source key
func NewTransportError(source, msg string) *TransportError {
	return &TransportError{baseError: baseError{msg: msg}, Source: source}
}

// StorageError represents persistence unavailability
type StorageError struct {
	baseError
}

// NewStorageError creates a new StorageError
func NewStorageError(msg string) *StorageError {
	return &StorageError{baseError{msg: msg}}
}

// UnknownSourceError represents a source key with no registry entry,
// fatal to the operation but not to the process
type UnknownSourceError struct {
	baseError
	Source string
}

// NewUnknownSourceError creates a new UnknownSourceError
func NewUnknownSourceError(source string) *UnknownSourceError {
	return &UnknownSourceError{baseError: baseError{msg: "unknown source: " + source}, Source: source}
}

// InternalError represents an unexpected internal failure
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// IsValidationError checks if error is a ValidationError
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// IsNotFoundError checks if error is a NotFoundError
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsTransportError checks if error is a TransportError
func IsTransportError(err error) bool {
	_, ok := err.(*TransportError)
	return ok
}

// IsStorageError checks if error is a StorageError
func IsStorageError(err error) bool {
	_, ok := err.(*StorageError)
	return ok
}

// IsUnknownSourceError checks if error is an UnknownSourceError
func IsUnknownSourceError(err error) bool {
	_, ok := err.(*UnknownSourceError)
	return ok
}

// IsInternalError checks if error is an InternalError
func IsInternalError(err error) bool {
	_, ok := err.(*InternalError)
	return ok
}
