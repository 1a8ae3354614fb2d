package api

import (
	"errors"
	"fmt"
)

var (
	ErrIdentityNotAccepted = errors.New("identity not accepted")
	ErrInvalidResponse     = errors.New("invalid response")
)

type UnknownCommandError struct {
	Command Command
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", string(e.Command))
}

type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "http request failed"
	}
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("http status %d", e.StatusCode)
}

// retryable reports whether a failed exchange may succeed on another attempt.
func retryable(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}
