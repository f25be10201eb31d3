package linkding

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is returned when a request is attempted without credentials.
var ErrNoToken = &AuthError{Message: "no API token configured"}

// NetworkError means no HTTP response was received (DNS, timeout, TLS, refused).
// Callers may retry; the client never does.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("linkding: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Temporary reports that the failure is worth retrying.
func (e *NetworkError) Temporary() bool { return true }

// AuthError means the token is missing or was rejected (401/403).
// The shell should force re-authentication.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return "linkding: " + e.Message
	}
	if e.Message != "" {
		return fmt.Sprintf("linkding: authentication failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("linkding: authentication failed (%d)", e.Status)
}

// RemoteError is any other unexpected HTTP status.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("linkding: HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("linkding: HTTP %d", e.Status)
}

// ServerSide reports whether the server, not the request, is at fault.
func (e *RemoteError) ServerSide() bool {
	return e.Status >= 500
}

// IsAuth reports whether err carries an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNetwork reports whether err carries a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// checkStatus maps a status code and body to the error taxonomy.
// want lists acceptable codes; empty means any 2xx.
func checkStatus(status int, body []byte, want ...int) error {
	if len(want) == 0 && status >= 200 && status <= 299 {
		return nil
	}
	for _, w := range want {
		if status == w {
			return nil
		}
	}
	msg := trimBody(body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Status: status, Message: msg}
	}
	return &RemoteError{Status: status, Body: msg}
}

// trimBody keeps error bodies short enough for display.
func trimBody(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
