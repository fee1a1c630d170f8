package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"ragkit-hq/bridge/pkg/proxy"
	"ragkit-hq/bridge/pkg/proxy/types"
)

// StreamHandler serves POST /bridge/chat/stream. The body is the chat query,
// forwarded to the backend as is. The response is an event stream:
//
//	event: chat-stream-chunk
//	data: "partial text"
//
//	event: chat-stream-done
//	data: {"sources":[...]}
//
//	event: chat-stream-result
//	data: {"outcome":"stream_completed"}
//
// Failures before the backend stream opens are answered with an ordinary
// JSON error response instead.
type StreamHandler struct {
	Streamer Streamer
}

// NewStreamHandler creates a chat stream handler.
func NewStreamHandler(s Streamer) *StreamHandler {
	return &StreamHandler{Streamer: s}
}

// ServeHTTP implements http.Handler.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx := r.Context()
	startTime := time.Now()

	payload, err := proxy.ParseJSONBody(r, false)
	if err != nil {
		writeFailure(w, r, "invalid stream request", err)
		return
	}

	out := &eventWriter{w: w, r: r}
	outcome, err := h.Streamer.Start(ctx, payload, out)
	if err != nil {
		// Nothing has been written yet.
		writeFailure(w, r, "stream failed to open", err)
		return
	}

	out.write(proxy.EventResult, types.StreamResult{Outcome: string(outcome)})

	slog.InfoContext(ctx, "chat stream finished",
		"outcome", outcome,
		"chunks", out.chunks,
		"total_latency_ms", time.Since(startTime).Milliseconds(),
	)
}

// eventWriter is the upstream.Sink of one HTTP stream. It commits the SSE
// headers on first use so pre-stream failures can still be sent as JSON.
type eventWriter struct {
	w       http.ResponseWriter
	r       *http.Request
	started bool
	failed  bool
	chunks  int
}

// OnChunk implements upstream.Sink.
func (e *eventWriter) OnChunk(content string) {
	e.chunks++
	e.write(proxy.EventChunk, content)
}

// OnDone implements upstream.Sink.
func (e *eventWriter) OnDone(payload json.RawMessage) {
	e.write(proxy.EventDone, payload)
}

func (e *eventWriter) write(name string, v interface{}) {
	if e.failed {
		return
	}
	if !e.started {
		proxy.SetSSEHeaders(e.w)
		e.w.WriteHeader(http.StatusOK)
		e.started = true
	}
	if err := proxy.WriteSSEEvent(e.w, name, v); err != nil {
		// The client is gone. Its context is cancelled too, which ends the
		// session at the next read.
		e.failed = true
		slog.WarnContext(e.r.Context(), "client disconnected during streaming",
			"event", name,
			"error", err,
		)
	}
}

// StopHandler serves POST /bridge/chat/stream/stop. It is idempotent and
// always answers 204.
type StopHandler struct {
	Streamer Streamer
}

// NewStopHandler creates a stop handler.
func NewStopHandler(s Streamer) *StopHandler {
	return &StopHandler{Streamer: s}
}

// ServeHTTP implements http.Handler.
func (h *StopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.Streamer.Stop()
	slog.DebugContext(r.Context(), "chat stream stop requested")
	w.WriteHeader(http.StatusNoContent)
}
