package realtime

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrIdentityMismatch = errors.New("backend confirmed a different client identity")
	ErrMissingIdentity  = errors.New("identity event without GUID")
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "event stream request failed"
	}
	if e.Status != "" {
		return "event stream: " + e.Status
	}
	return fmt.Sprintf("event stream: http status %d", e.StatusCode)
}

// IsRefused reports whether err is a client error the backend will keep
// returning, so reconnecting is pointless.
func IsRefused(err error) bool {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	code := statusErr.StatusCode
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}
