package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface lets handlers translate domain failures
// without enumerating concrete error types.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// UnavailableError indicates the service cannot act in its current
	// state, e.g. no participant has a configured credential.
	UnavailableError struct {
		Message string
	}
)

func (e *ValidationError) Error() string  { return e.Message }
func (e *NotFoundError) Error() string    { return e.Message }
func (e *UnavailableError) Error() string { return e.Message }

func (e *ValidationError) StatusCode() int  { return http.StatusBadRequest }
func (e *NotFoundError) StatusCode() int    { return http.StatusNotFound }
func (e *UnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// Sentinel errors - use with errors.Is()
var (
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrNoActiveParticipants = errors.New("no active participants")
	ErrEmptyConversation    = errors.New("conversation is empty")
	ErrUnknownParticipant   = errors.New("unknown participant")
)
