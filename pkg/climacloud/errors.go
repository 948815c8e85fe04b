package climacloud

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse indicates the API answered with 200 OK but the body
// was missing an expected field. The service is known to emit such bodies
// for some rejected logins instead of a clean 401.
var ErrMalformedResponse = errors.New("malformed response from ClimaCloud")

// ErrInvalidConfig indicates a Config that fails validation.
var ErrInvalidConfig = errors.New("invalid climacloud configuration")

// StatusError reports a non-success HTTP status from the API.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Endpoint is the request path that failed.
	Endpoint string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("climacloud: %s returned status %d", e.Endpoint, e.StatusCode)
}

// AuthRejected reports whether the status indicates rejected credentials
// (401 or 403).
func (e *StatusError) AuthRejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
