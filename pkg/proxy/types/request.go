package types

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// allowedMethods are the methods CallRequest may forward.
var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// CallRequest is a generic forward call to the backend.
type CallRequest struct {
	// Method is the HTTP method, e.g. "GET".
	Method string `json:"method"`

	// Path is the backend path including any query string. It must start
	// with "/".
	Path string `json:"path"`

	// Body is forwarded verbatim. Omitted or null means no body.
	Body json.RawMessage `json:"body,omitempty"`
}

// Validate normalizes the method and checks required fields.
func (r *CallRequest) Validate() error {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		return &ValidationError{Field: "method", Message: "method is required", Missing: true}
	}
	if !allowedMethods[r.Method] {
		return &ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", r.Method)}
	}

	if r.Path == "" {
		return &ValidationError{Field: "path", Message: "path is required", Missing: true}
	}
	if !strings.HasPrefix(r.Path, "/") || strings.HasPrefix(r.Path, "//") {
		return &ValidationError{Field: "path", Message: "path must be absolute, e.g. /api/llm/config"}
	}

	if strings.TrimSpace(string(r.Body)) == "null" {
		r.Body = nil
	}
	return nil
}

// CallResponse wraps a successful backend result.
type CallResponse struct {
	Result json.RawMessage `json:"result"`
}

// StreamResult is the payload of the final event of a chat stream.
type StreamResult struct {
	Outcome string `json:"outcome"`
}

// ValidationError represents a request validation failure.
type ValidationError struct {
	Field   string
	Message string
	Missing bool
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
