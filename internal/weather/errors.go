package weather

import (
	"errors"
	"fmt"
)

// ErrNetwork indicates the request never produced a response: DNS failure,
// refused connection, or the shared request timeout firing. There is no
// built-in retry; callers decide whether to offer one.
var ErrNetwork = errors.New("no response from server")

// ErrNoCache is returned by last-known lookups on a service built without a
// cache.
var ErrNoCache = errors.New("conditions cache not configured")

// ServerError is a non-2xx response from the provider. Message is lifted from
// the response body when the provider supplied one.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// RequestError means the request could not be constructed. It should not
// occur for valid inputs and exists as a defensive catch-all.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return "invalid request: " + e.Message
}
