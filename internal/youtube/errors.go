package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthorized means no usable credentials are stored, or the token
// endpoint rejected a refresh. The operator has to reconnect the account.
var ErrNotAuthorized = errors.New("not authenticated with YouTube")

// APIError is a non-success response from a YouTube endpoint. The body is
// kept verbatim for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api error (status %d): %s", e.StatusCode, e.Body)
}

// NetworkError is a transport-level failure before any API response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// isAuthFailure reports whether an error signals expired or revoked
// credentials: a 401 status, or the API's unauthenticated markers in the
// body.
func isAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(apiErr.Body, "UNAUTHENTICATED") ||
		strings.Contains(apiErr.Body, "Invalid Credentials")
}
