package publitio

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrClientClosed indicates an operation was attempted after Close
	ErrClientClosed = errors.New("publitio client is closed")

	// ErrMissingCredentials indicates an empty API key or secret
	ErrMissingCredentials = errors.New("api key and secret are required")

	// ErrInvalidURI indicates the request URI could not be built
	ErrInvalidURI = errors.New("invalid request uri")

	// ErrTransport indicates the request never produced a response
	ErrTransport = errors.New("transport failure")

	// ErrResponseFormat indicates the response body was not a single JSON object
	ErrResponseFormat = errors.New("invalid response format")
)

// URIError is returned when a path or parameter cannot form a valid request URI.
type URIError struct {
	Path string
	Err  error
}

func (e *URIError) Error() string {
	return fmt.Sprintf("cannot build uri for path %q: %v", e.Path, e.Err)
}

func (e *URIError) Unwrap() error {
	return e.Err
}

func (e *URIError) Is(target error) bool {
	return target == ErrInvalidURI
}

// TransportError wraps network failures: refused connections, timeouts,
// cancelled contexts and broken request bodies.
type TransportError struct {
	Method string
	URL    string // signature redacted
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ResponseFormatError is returned when the response body is not a single JSON
// object. This usually means the endpoint path is wrong or the API had an
// internal error; StatusCode helps tell the two apart.
type ResponseFormatError struct {
	StatusCode int
	Err        error
}

func (e *ResponseFormatError) Error() string {
	msg := "failed to parse JSON properly, this might be because you made an API call " +
		"to an invalid endpoint, or an internal server error occurred"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

func (e *ResponseFormatError) Is(target error) bool {
	return target == ErrResponseFormat
}
