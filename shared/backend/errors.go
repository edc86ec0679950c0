package backend

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned when no video ID can be extracted from the input.
var ErrInvalidURL = errors.New("invalid YouTube URL")

// BackendUnavailableError means the health probe failed; the user can retry later.
type BackendUnavailableError struct {
	Detail string
}

func (e *BackendUnavailableError) Error() string {
	if e.Detail == "" {
		return "backend server is not available"
	}
	return "backend server is not available: " + e.Detail
}

// UpstreamError is a definitive non-2xx answer from the backend.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Detail)
}
