package upstream

import (
	"fmt"

	"ragkit-hq/bridge/pkg/backend"
)

// ErrNotReady is returned when no backend port has been recorded yet.
var ErrNotReady = backend.ErrNotReady

// UnreadableBody replaces an error body that could not be read.
const UnreadableBody = "<unreadable response body>"

// UpstreamError is a non-2xx response from the backend.
type UpstreamError struct {
	// Status is the HTTP status code.
	Status int

	// Body is the response body as text, or UnreadableBody.
	Body string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// TransportError is a request that failed before a response arrived:
// connection refused or reset, or a timeout.
type TransportError struct {
	Method string
	Path   string
	Cause  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("backend request %s %s failed: %v", e.Method, e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError is a 2xx response whose body is not valid JSON.
type ParseError struct {
	// RawResponse is the body as received.
	RawResponse string
	Cause       error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse backend response: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// outcomeLabel classifies err for metrics.
func outcomeLabel(err error) string {
	switch err.(type) {
	case nil:
		return "success"
	case *UpstreamError:
		return "upstream"
	case *TransportError:
		return "transport"
	case *ParseError:
		return "parse"
	}
	if err == ErrNotReady {
		return "not_ready"
	}
	return "error"
}

// StreamProtocolError describes a stream frame whose payload could not be
// interpreted. It is logged and the frame handled by a fallback; it never
// ends a session.
type StreamProtocolError struct {
	Event   string
	Payload string
	Cause   error
}

// Error implements the error interface.
func (e *StreamProtocolError) Error() string {
	return fmt.Sprintf("malformed %q event payload: %v", e.Event, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StreamProtocolError) Unwrap() error {
	return e.Cause
}
