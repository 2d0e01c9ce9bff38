package api

import "fmt"

// AuthError indicates the session token was rejected (401-class response).
// Callers clear the stored credential and re-prompt on the next refresh.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (HTTP %d)", e.Status)
}

// HTTPError is any other non-2xx response. BodyPrefix holds a truncated
// summary of the response body for diagnostics.
type HTTPError struct {
	Status     int
	BodyPrefix string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP %d: %s", e.Status, e.BodyPrefix)
}

// ParseError indicates the response body was not well-formed JSON matching
// the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
