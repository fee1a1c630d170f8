package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ragkit-hq/bridge/pkg/proxy/types"
	"ragkit-hq/bridge/pkg/sse"
)

// Event names written to the consumer on a chat stream.
const (
	EventChunk  = "chat-stream-chunk"
	EventDone   = "chat-stream-done"
	EventResult = "chat-stream-result"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an error response with its HTTP status.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.HTTPStatusCode(), errResp)
}

// WriteError maps err with HandleError and writes it.
func WriteError(w http.ResponseWriter, err error) error {
	return WriteErrorResponse(w, HandleError(err))
}

// SetSSEHeaders sets the appropriate headers for Server-Sent Events streaming.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteSSEEvent writes one named event whose data is the JSON encoding of v,
// then flushes. json.RawMessage values are written as they are.
func WriteSSEEvent(w http.ResponseWriter, name string, v interface{}) error {
	var data []byte
	switch v := v.(type) {
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("failed to marshal SSE event %s: %w", name, err)
		}
	}

	if _, err := w.Write(sse.Format(name, string(data))); err != nil {
		return fmt.Errorf("failed to write SSE event %s: %w", name, err)
	}

	// Flush immediately for real-time streaming
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}
