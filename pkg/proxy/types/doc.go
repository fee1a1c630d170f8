// Package types defines the request and response bodies of the bridge's
// consumer-facing HTTP surface.
//
// # Core Types
//
// Request types:
//   - CallRequest: body of POST /bridge/call, a method, path and optional body
//     forwarded verbatim to the backend
//
// Response types:
//   - CallResponse: {"result": <backend JSON>}
//   - StreamResult: payload of the final chat-stream-result event
//
// Error types:
//   - ErrorResponse: {"error": "<message>"} plus an optional machine code and
//     the backend's status when the failure came from the backend
//
// # Validation
//
// Request types include validation logic. Validation errors are reported as
// *ValidationError and surface to callers as 400 responses.
package types
