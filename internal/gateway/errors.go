package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by every call when no endpoint is set.
	ErrNotConfigured = errors.New("remote store endpoint not configured")
	// ErrEmptyResponse is returned when a successful envelope lacks the
	// data the action promises.
	ErrEmptyResponse = errors.New("remote store returned no data")
)

// RemoteError is an application-level rejection from the remote store.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s", e.Action, e.Message)
}

// StatusError is an HTTP-level failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned status %d", e.Code)
}
