package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized reports a 401 from the backend. It is never shown raw to
// the user: the session manager observes it through its unauthorized hook and
// owns all recovery policy.
var ErrUnauthorized = errors.New("unauthorized")

// ServerError reports a 5xx (or otherwise unusable) HTTP-layer response.
type ServerError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

// NetworkError reports a transport-level failure: DNS, timeout, connection
// reset. The wrapped cause is for diagnostics, not for end users.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the transport cause.
func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError reports a response body that did not match the expected
// shape.
type DecodingError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Err)
}

// Unwrap returns the decode cause.
func (e *DecodingError) Unwrap() error { return e.Err }

// UserMessage maps an API error to the short, non-technical string shown to
// end users. Raw error details never reach the user.
func UserMessage(err error) string {
	var serverErr *ServerError
	var netErr *NetworkError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Session expired. Please sign in again."
	case errors.As(err, &serverErr):
		return fmt.Sprintf("Server error (%d). Please try again.", serverErr.StatusCode)
	case errors.As(err, &netErr):
		return "Couldn't connect. Check your internet and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
