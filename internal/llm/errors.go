package llm

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned before any network I/O when the remote
// endpoint URL or API key is missing.
var ErrNotConfigured = errors.New("llm: endpoint URL or API key not configured")

// BackendError is returned when every candidate request body has been tried
// without yielding usable text. It carries the last observed failure.
type BackendError struct {
	// Status is the last HTTP status observed, or 0 if the last failure
	// was not an HTTP error.
	Status int
	// Snippet is a truncated response body or failure description.
	Snippet string
	// Err is the underlying error, if any.
	Err error
}

func (e *BackendError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("llm: all request formats failed, last status %d: %s", e.Status, e.Snippet)
	case e.Err != nil:
		return fmt.Sprintf("llm: all request formats failed: %v", e.Err)
	default:
		return fmt.Sprintf("llm: all request formats failed: %s", e.Snippet)
	}
}

func (e *BackendError) Unwrap() error { return e.Err }
