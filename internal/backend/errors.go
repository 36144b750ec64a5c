package backend

import "fmt"

// ErrorKind classifies API client failures
type ErrorKind string

const (
	// ErrAuthRequired means no secret key is present; detected locally
	// before any network call is made.
	ErrAuthRequired ErrorKind = "AUTH_REQUIRED"
	// ErrSessionExpired means the backend rejected the key (HTTP 401).
	ErrSessionExpired ErrorKind = "SESSION_EXPIRED"
	// ErrHTTP is any other non-2xx response.
	ErrHTTP ErrorKind = "HTTP_ERROR"
	// ErrParse means the response body could not be decoded.
	ErrParse ErrorKind = "PARSE_ERROR"
)

// APIError carries the classification and, for HTTP errors, the status code
// and any server-provided message.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind == ErrHTTP {
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// IsAuthError reports whether err should send the caller to the login page.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.Kind == ErrAuthRequired || apiErr.Kind == ErrSessionExpired
}
