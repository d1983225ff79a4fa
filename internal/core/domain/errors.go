package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAbsentSource means an evidence source does not exist for a job.
	ErrAbsentSource = errors.New("source absent")
	// ErrMalformedSource means a source exists but failed structural validation.
	ErrMalformedSource = errors.New("source malformed")
	// ErrRemoteService means an external projection or search service failed.
	ErrRemoteService = errors.New("remote service failure")
)

// RemoteServiceError describes a failed call to an external service.
type RemoteServiceError struct {
	Op      string // e.g. "project", "crs search"
	Status  int    // HTTP status or service error code, 0 if none
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	msg := e.Op + ": " + ErrRemoteService.Error()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrRemoteService and the cause.
func (e *RemoteServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteService, e.Err}
	}
	return []error{ErrRemoteService}
}
