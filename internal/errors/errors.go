package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuthExpired indicates the backend reported the session
	// credentials are no longer valid (401 or 422 on any call). Handled
	// centrally; never surfaced as a form-level error.
	ErrCodeAuthExpired ErrorCode = "auth_expired"
	// ErrCodeValidation indicates the server rejected the input (other 4xx),
	// local to the calling form.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeServer indicates a server-side failure (5xx). No automatic retry.
	ErrCodeServer ErrorCode = "server"
	// ErrCodeTransport indicates the request could not be sent or received at
	// all: offline, DNS failure, timeout. Distinct from a well-formed error
	// response, which keeps its own code.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeQueuePersistence indicates durable local storage itself failed
	// while saving a deferred write. A hard failure: no fallback remains.
	ErrCodeQueuePersistence ErrorCode = "queue_persistence"
	// ErrCodeServerContract indicates a 2xx response missing required fields.
	// Never treated as success.
	ErrCodeServerContract ErrorCode = "server_contract"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInternal indicates an internal client error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As through Unwrap.
type AppError struct {
	// Code categorizes the error type.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error (optional).
	Cause error
	// Status is the HTTP status that produced the error, when one exists.
	Status int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// AuthExpired creates a new AuthExpired error.
func AuthExpired(message string) *AppError {
	return &AppError{Code: ErrCodeAuthExpired, Message: message}
}

// Validation creates a new Validation error carrying the rejecting status.
func Validation(message string, status int) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Status: status}
}

// Server creates a new Server error carrying the failing status.
func Server(message string, status int) *AppError {
	return &AppError{Code: ErrCodeServer, Message: message, Status: status}
}

// ServerContract creates a new ServerContract error.
func ServerContract(message string) *AppError {
	return &AppError{Code: ErrCodeServerContract, Message: message}
}

// ServerContractf creates a new ServerContract error with formatted message.
func ServerContractf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeServerContract, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Transport wraps a transport-level failure.
func Transport(err error, message string) *AppError {
	return Wrap(err, ErrCodeTransport, message)
}

// QueuePersistence wraps a durable-storage failure while saving a deferred write.
func QueuePersistence(err error, message string) *AppError {
	return Wrap(err, ErrCodeQueuePersistence, message)
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsAuthExpired checks if an error is an AuthExpired error.
func IsAuthExpired(err error) bool {
	return isCode(err, ErrCodeAuthExpired)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsServer checks if an error is a Server error.
func IsServer(err error) bool {
	return isCode(err, ErrCodeServer)
}

// IsTransport checks if an error is a Transport error.
func IsTransport(err error) bool {
	return isCode(err, ErrCodeTransport)
}

// IsQueuePersistence checks if an error is a QueuePersistence error.
func IsQueuePersistence(err error) bool {
	return isCode(err, ErrCodeQueuePersistence)
}

// IsServerContract checks if an error is a ServerContract error.
func IsServerContract(err error) bool {
	return isCode(err, ErrCodeServerContract)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetStatus returns the HTTP status from an error, or zero when none is recorded.
func GetStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// IsTransportFailure reports whether a raw error from the HTTP client means
// the request never completed: the network was unreachable, DNS failed, the
// connection timed out, or the context expired in flight. A well-formed
// error response from the server never lands here.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if isCode(err, ErrCodeTransport) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
