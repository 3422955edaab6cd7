// Package errors provides the application error taxonomy shared by the
// attribution service and the HTTP handlers. Each error type carries the HTTP
// status it maps to, so handlers can translate service failures into the
// stable {success:false, error} response shape without type switching on
// sentinel values.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError indicates a missing or malformed required field in user
// input. Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates an unknown or expired identifier. Maps to HTTP 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found or expired", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError for the given resource and identifier.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// RateLimitedError indicates the admission controller rejected the request.
// Maps to HTTP 429; RetryAfter is in whole seconds.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

// PersistenceError indicates the backing storage medium was unreadable or
// unwritable. Call sites that tolerate best-effort persistence log and swallow
// it; only store initialization treats it as fatal.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WrapPersistence wraps err as a PersistenceError for the given operation.
func WrapPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// HTTPStatus returns the HTTP status code an error maps to. Unrecognized
// errors map to 500.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		rl *RateLimitedError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
