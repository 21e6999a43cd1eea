package errors

import (
	"fitsync/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
	Retryable() bool   // Whether the caller may reasonably retry the operation
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	errorCode string
	message   string
	details   string
	retryable bool
}

// NewBaseError creates a new base error
func NewBaseError(errorCode, message, details string, retryable bool) *BaseError {
	return &BaseError{
		errorCode: errorCode,
		message:   message,
		details:   details,
		retryable: retryable,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Retryable reports whether the caller may retry the failed operation.
func (e *BaseError) Retryable() bool {
	return e.retryable
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		retryable: e.retryable,
	}
}

// Is matches errors by business code so detail-enriched copies still compare
// equal to their predefined base value under errors.Is.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// Predefined error types
var (
	// Credential shape errors, never retried.
	ErrValidationFailed = NewBaseError(
		"VALIDATION_FAILED",
		"credential validation failed",
		"",
		false,
	)

	// The platform rejected the credentials, surfaced verbatim and never retried.
	ErrInvalidCredentials = NewBaseError(
		"INVALID_CREDENTIALS",
		"invalid username or password",
		"",
		false,
	)

	// Refresh requested against a strategy that cannot perform it. Surfaced so
	// the caller can fall back to another strategy.
	ErrUnsupportedOperation = NewBaseError(
		"UNSUPPORTED_OPERATION",
		"operation not supported by this authentication strategy",
		"",
		false,
	)

	// Generic exchange failure, enriched with operation and username context.
	ErrAuthenticationFailed = NewBaseError(
		"AUTHENTICATION_FAILED",
		"authentication failed",
		"",
		false,
	)

	// No registered strategy matched the active configuration.
	ErrNoCompatibleStrategy = NewBaseError(
		"NO_COMPATIBLE_STRATEGY",
		"no compatible authentication strategy for configuration",
		"",
		false,
	)

	// Transport-level failures: timeouts, connection errors. Eligible for
	// caller-level retry, never retried internally.
	ErrNetworkFailure = NewBaseError(
		"NETWORK_FAILURE",
		"network request failed",
		"",
		true,
	)

	// Session store read/write failures.
	ErrStorageFailure = NewBaseError(
		"STORAGE_FAILURE",
		"session storage operation failed",
		"",
		true,
	)

	// A call required an active session and none is cached.
	ErrNotAuthenticated = NewBaseError(
		"NOT_AUTHENTICATED",
		"no authenticated session",
		"",
		false,
	)
)
