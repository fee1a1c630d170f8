// Package proxy holds the HTTP plumbing shared by the bridge's handlers:
// request parsing, error mapping, and JSON and SSE response writers.
//
// # Architecture
//
// The bridge follows a middleware-based layout:
//
//   - handlers: call, command, stream, stop, and exit endpoints
//   - middleware: request ID, logging, CORS, timeout, and panic recovery
//   - types: the wire shapes of requests, results, and errors
//
// # Error Handling
//
// Errors from the backend client are mapped to HTTP statuses by HandleError
// and written as a flat JSON body:
//
//	{
//	  "error": "backend returned status 422: folder does not exist",
//	  "code": "backend_error",
//	  "upstream_status": 422
//	}
//
// A call made before the backend is ready answers 503 with code
// "backend_not_ready". A timeout toward the backend answers 504.
//
// # Streaming
//
// Chat streams are relayed as Server-Sent Events named chat-stream-chunk,
// chat-stream-done, and a final chat-stream-result carrying the outcome:
//
//	event: chat-stream-chunk
//	data: {"content":"Hello"}
//
//	event: chat-stream-done
//	data: {"sources":[]}
//
//	event: chat-stream-result
//	data: {"outcome":"stream_completed"}
//
// # Request Limits
//
// Request bodies are capped at MaxRequestBodySize; larger bodies answer 413.
package proxy
