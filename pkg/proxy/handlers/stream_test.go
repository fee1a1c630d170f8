package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/sse"
	"ragkit-hq/bridge/pkg/upstream"
)

// scriptedStreamer replays chunks and a terminal payload to the sink.
type scriptedStreamer struct {
	chunks  []string
	done    json.RawMessage
	outcome upstream.Outcome
	err     error

	payload json.RawMessage
	stops   atomic.Int32
}

func (s *scriptedStreamer) Start(ctx context.Context, payload json.RawMessage, sink upstream.Sink) (upstream.Outcome, error) {
	s.payload = payload
	if s.err != nil {
		return "", s.err
	}
	for _, c := range s.chunks {
		sink.OnChunk(c)
	}
	if s.done != nil {
		sink.OnDone(s.done)
	}
	return s.outcome, nil
}

func (s *scriptedStreamer) Stop() { s.stops.Add(1) }

// readEvents decodes every frame of an SSE body.
func readEvents(t *testing.T, body string) []sse.Event {
	t.Helper()
	dec := sse.NewDecoder()
	return dec.Feed([]byte(body))
}

func TestStreamHandler(t *testing.T) {
	tests := []struct {
		name       string
		streamer   *scriptedStreamer
		wantEvents []sse.Event
	}{
		{
			name: "completed",
			streamer: &scriptedStreamer{
				chunks:  []string{"Hel", "lo"},
				done:    json.RawMessage(`{"sources":[]}`),
				outcome: upstream.OutcomeCompleted,
			},
			wantEvents: []sse.Event{
				{Name: "chat-stream-chunk", Data: `"Hel"`},
				{Name: "chat-stream-chunk", Data: `"lo"`},
				{Name: "chat-stream-done", Data: `{"sources":[]}`},
				{Name: "chat-stream-result", Data: `{"outcome":"stream_completed"}`},
			},
		},
		{
			name: "stopped",
			streamer: &scriptedStreamer{
				chunks:  []string{"one"},
				done:    upstream.StoppedPayload,
				outcome: upstream.OutcomeCancelled,
			},
			wantEvents: []sse.Event{
				{Name: "chat-stream-chunk", Data: `"one"`},
				{Name: "chat-stream-done", Data: `{"stopped":true}`},
				{Name: "chat-stream-result", Data: `{"outcome":"stream_stopped"}`},
			},
		},
		{
			name:     "ended without signal",
			streamer: &scriptedStreamer{outcome: upstream.OutcomeEndedWithoutSignal},
			wantEvents: []sse.Event{
				{Name: "chat-stream-result", Data: `{"outcome":"stream_ended"}`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bridge/chat/stream", strings.NewReader(`{"query":"hello"}`))
			w := httptest.NewRecorder()

			NewStreamHandler(tt.streamer).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
				t.Errorf("Content-Type = %q", ct)
			}
			if string(tt.streamer.payload) != `{"query":"hello"}` {
				t.Errorf("payload = %s", tt.streamer.payload)
			}

			got := readEvents(t, w.Body.String())
			if len(got) != len(tt.wantEvents) {
				t.Fatalf("events = %+v, want %+v", got, tt.wantEvents)
			}
			for i := range got {
				if got[i] != tt.wantEvents[i] {
					t.Errorf("event %d = %+v, want %+v", i, got[i], tt.wantEvents[i])
				}
			}
		})
	}
}

func TestStreamHandler_PreStreamFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not ready", upstream.ErrNotReady, http.StatusServiceUnavailable},
		{"backend status", &upstream.UpstreamError{Status: 500, Body: "index missing"}, http.StatusBadGateway},
		{"transport", &upstream.TransportError{Method: "POST", Path: "/api/chat/stream", Cause: errors.New("refused")}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bridge/chat/stream", strings.NewReader(`{"query":"x"}`))
			w := httptest.NewRecorder()

			NewStreamHandler(&scriptedStreamer{err: tt.err}).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestStreamHandler_RequiresBody(t *testing.T) {
	streamer := &scriptedStreamer{}
	req := httptest.NewRequest(http.MethodPost, "/bridge/chat/stream", nil)
	w := httptest.NewRecorder()

	NewStreamHandler(streamer).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStopHandler(t *testing.T) {
	streamer := &scriptedStreamer{}
	h := NewStopHandler(streamer)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bridge/chat/stream/stop", nil))
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
	}

	if got := streamer.stops.Load(); got != 2 {
		t.Errorf("Stop called %d times, want 2", got)
	}
}

func TestExitHandler(t *testing.T) {
	var exited atomic.Bool
	w := httptest.NewRecorder()

	NewExitHandler(func() { exited.Store(true) }).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bridge/exit", nil))

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", w.Code)
	}
	if !exited.Load() {
		t.Error("exit hook not called")
	}
}

// staticPort points the upstream client at a test server.
type staticPort int

func (p staticPort) Port() (int, bool) { return int(p), true }

func TestStreamHandler_EndToEnd(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"query":"hi"}` {
			t.Errorf("backend received %s", body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: token\ndata: {\"content\":\"line one\\nline two\"}\n\n")
		w.(http.Flusher).Flush()
		io.WriteString(w, "event: done\ndata: {\"sources\":[\"a.pdf\"]}\n\n")
	}))
	defer backend.Close()

	u, _ := url.Parse(backend.URL)
	_, p, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(p)

	cfg := config.DefaultConfig()
	cfg.Backend.Host = "127.0.0.1"
	client := upstream.NewClient(cfg, staticPort(port), nil, nil)
	bridge := upstream.NewBridge(client, "/api/chat/stream", nil, nil)

	srv := httptest.NewServer(NewStreamHandler(bridge))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"query":"hi"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	events := readEvents(t, string(raw))
	if len(events) != 3 {
		t.Fatalf("events = %+v", events)
	}

	var chunk string
	if err := json.Unmarshal([]byte(events[0].Data), &chunk); err != nil || chunk != "line one\nline two" {
		t.Errorf("chunk = %q (%v)", chunk, err)
	}
	if events[1].Data != `{"sources":["a.pdf"]}` {
		t.Errorf("done = %s", events[1].Data)
	}
	if events[2].Data != `{"outcome":"stream_completed"}` {
		t.Errorf("result = %s", events[2].Data)
	}
}
