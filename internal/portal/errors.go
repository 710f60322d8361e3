package portal

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a request the server answered but did not accept: either a
// non-2xx status or a 2xx body with success=false.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode >= 300 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unsuccessful reports whether the server returned 2xx with success=false.
func (e *APIError) Unsuccessful() bool {
	return e.StatusCode < 300
}

// IsAuthError reports whether err carries an HTTP 401 or 403 from the server.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Message extracts the text to show a user for err: the server's message when
// there is one, otherwise the error itself, otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if s := err.Error(); s != "" {
		return s
	}
	return fallback
}
