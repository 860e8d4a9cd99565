package github

import "fmt"

// NetworkError reports that the remote API was unreachable.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("github: network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response from the remote API.
type APIError struct {
	Status     int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error: %d %s", e.Status, e.StatusText)
}

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("github: decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
