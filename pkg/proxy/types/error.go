package types

import "net/http"

// ErrorResponse is the body of every failed bridge request.
type ErrorResponse struct {
	// Error is a human-readable message. For backend failures it carries the
	// backend status and body text.
	Error string `json:"error"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// UpstreamStatus is the backend's HTTP status when it answered non-2xx.
	UpstreamStatus int `json:"upstream_status,omitempty"`

	status int
}

// Error code constants.
const (
	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidValue indicates a field has an invalid value.
	CodeInvalidValue = "invalid_value"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"

	// CodeUnknownCommand indicates a name missing from the command catalog.
	CodeUnknownCommand = "unknown_command"

	// CodeBackendNotReady indicates no backend port is known yet.
	CodeBackendNotReady = "backend_not_ready"

	// CodeBackendError indicates the backend answered with a non-2xx status.
	CodeBackendError = "backend_error"

	// CodeBackendUnreachable indicates the request never got a response.
	CodeBackendUnreachable = "backend_unreachable"

	// CodeBackendTimeout indicates the backend did not answer in time.
	CodeBackendTimeout = "backend_timeout"

	// CodeInvalidResponse indicates a 2xx response that is not JSON.
	CodeInvalidResponse = "invalid_response"

	// CodeInternalError indicates an internal bridge error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates an error response sent with the given status.
func NewErrorResponse(status int, message, code string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code, status: status}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, code string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, message, code)
}

// NewNotFoundError creates an error response for unknown resources (404).
func NewNotFoundError(message, code string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, message, code)
}

// NewServerError creates an error response for internal errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, message, CodeInternalError)
}

// NewBadGatewayError creates an error response for backend failures (502).
func NewBadGatewayError(message, code string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadGateway, message, code)
}

// NewServiceUnavailableError creates an error response for a backend that is
// not running yet (503).
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, message, CodeBackendNotReady)
}

// NewGatewayTimeoutError creates an error response for backend timeouts (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusGatewayTimeout, message, CodeBackendTimeout)
}

// HTTPStatusCode returns the status the response is sent with.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}
