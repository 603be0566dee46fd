package backend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the backend answers 404 for an optional
// lookup (master resume, tailored resume, resume version). Callers decide
// whether absence triggers fallback; it is never a transport failure.
var ErrNotFound = errors.New("backend: not found")

// ErrNoMasterResume is returned when tailored-resume creation is refused
// because the user has no master resume yet. The backend signals this case
// by message content, not by a dedicated status code.
var ErrNoMasterResume = errors.New("backend: no master resume exists for user")

// RequestError represents a failed request to the backend service.
type RequestError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s failed: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s failed: %s", e.Operation, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}
