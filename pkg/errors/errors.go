// Package errors defines the sentinel errors shared across the service and
// an AppError type that carries an HTTP status code across layer boundaries.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIndexNotReady is returned when a query arrives before any
	// successful index build or load.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrIndexMissing is returned by the persistence layer when no index
	// file exists at the configured path.
	ErrIndexMissing = errors.New("index file missing")
	// ErrCorruptIndex is returned by the persistence layer when the index
	// file exists but is structurally invalid.
	ErrCorruptIndex = errors.New("index file corrupt")
	// ErrCatalogUnavailable is returned when the publication catalog
	// cannot be reached.
	ErrCatalogUnavailable = errors.New("publication catalog unavailable")
	ErrRebuildInProgress  = errors.New("rebuild already in progress")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
)

// AppError wraps a sentinel error with a human-readable message and the HTTP
// status code it should map to at the API boundary.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError around a sentinel.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with printf-style message formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to an HTTP status code, honouring an embedded
// AppError first and falling back to per-sentinel defaults.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrIndexNotReady),
		errors.Is(err, ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRebuildInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
