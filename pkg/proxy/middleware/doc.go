// Package middleware provides HTTP middleware for the bridge's consumer-facing
// server.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Tracing(Logging(RequestID(CORS(Timeout(mux))))))
//
// Order (innermost to outermost):
//  1. Timeout: Put a deadline on non-streaming requests
//  2. CORS: Add Cross-Origin Resource Sharing headers for the UI webview
//  3. RequestID: Generate and propagate request ID
//  4. Logging: Log request/response details
//  5. Tracing: Extract trace context and open a server span
//  6. Recovery: Recover from panics
//
// # Request ID
//
// RequestIDMiddleware generates a UUID v4 for each request unless the client
// sent one:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so every log record written
// with the request context carries it, and the upstream client forwards it
// to the backend.
//
// # Logging
//
// LoggingMiddleware records method, path, status, bytes and latency at a
// level chosen from the status code:
//
//	{
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "component": "http",
//	  "method": "POST",
//	  "path": "/bridge/call",
//	  "status": 200,
//	  "latency_ms": 12,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// Its response writer wrapper implements http.Flusher so event streams pass
// through unbuffered.
//
// # CORS
//
// CORS configuration is loaded from the bridge section:
//
//	bridge:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["tauri://localhost", "http://localhost:1420"]
//	    allowed_methods: ["GET", "POST", "OPTIONS"]
//	    allowed_headers: ["Content-Type", "X-Request-ID"]
//	    max_age: 3600
//
// # Recovery
//
// RecoveryMiddleware converts panics into 500 responses:
//
//	{"error": "An internal error occurred. Please try again later.", "code": "internal_error"}
//
// The panic stack trace is logged but not exposed to clients.
//
// # Timeout
//
// TimeoutMiddleware only sets a context deadline; it never writes to the
// response itself. Handlers see the deadline through their backend calls and
// answer 504. Stream routes are exempt.
package middleware
