package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ragkit-hq/bridge/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseCallRequest parses and validates the body of a forward call.
//
// Example usage:
//
//	req, err := ParseCallRequest(r)
//	if err != nil {
//	    // Handle validation error
//	    return err
//	}
func ParseCallRequest(r *http.Request) (*types.CallRequest, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	var req types.CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		if valErr, ok := err.(*types.ValidationError); ok {
			code := types.CodeInvalidValue
			if valErr.Missing {
				code = types.CodeMissingField
			}
			return nil, &RequestError{
				Message: valErr.Message,
				Code:    code,
				Param:   valErr.Field,
			}
		}
		return nil, err
	}

	return &req, nil
}

// ParseJSONBody reads the body as opaque JSON. An empty body is returned as
// nil when optional is true and rejected otherwise.
func ParseJSONBody(r *http.Request, optional bool) (json.RawMessage, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		if optional {
			return nil, nil
		}
		return nil, &RequestError{
			Message: "request body is required",
			Code:    types.CodeMissingField,
			Param:   "body",
		}
	}

	if !json.Valid(body) {
		return nil, &RequestError{
			Message: "request body is not valid JSON",
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}
	return json.RawMessage(body), nil
}

// readBody reads at most MaxRequestBodySize bytes.
func readBody(r *http.Request) ([]byte, error) {
	// Read one extra byte to detect oversize bodies
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}
	return body, nil
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	resp := types.NewInvalidRequestError(e.Message, e.Code)
	if e.Code == types.CodeRequestTooLarge {
		resp = types.NewErrorResponse(http.StatusRequestEntityTooLarge, e.Message, e.Code)
	}
	return resp
}
