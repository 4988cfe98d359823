package services

import (
	"errors"
	"fmt"
)

// ErrNoCache is returned by GetOrFetch when a fetch fails and no prior
// entry exists to fall back on.
var ErrNoCache = errors.New("no cached data available")

// ErrUnknownCategory is returned for operations naming a category outside
// the enabled registry.
var ErrUnknownCategory = errors.New("category is not registered")

// APIError is a non-success status code in the upstream envelope, e.g. an
// invalid or exhausted key.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tianapi error %d: %s", e.Code, e.Msg)
}

// NetworkError covers timeouts, connection failures and non-200 HTTP
// responses.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("tianapi request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError covers malformed JSON and unexpected response shapes.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tianapi response invalid: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
