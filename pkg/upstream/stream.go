package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"ragkit-hq/bridge/pkg/sse"
	"ragkit-hq/bridge/pkg/telemetry/logging"
	"ragkit-hq/bridge/pkg/telemetry/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Outcome is how a stream session ended.
type Outcome string

const (
	// OutcomeCompleted means a done event arrived.
	OutcomeCompleted Outcome = "stream_completed"

	// OutcomeErrorReported means an error event arrived or the connection
	// failed mid-stream.
	OutcomeErrorReported Outcome = "stream_error"

	// OutcomeCancelled means Stop was called or the caller went away.
	OutcomeCancelled Outcome = "stream_stopped"

	// OutcomeEndedWithoutSignal means the backend closed the stream without a
	// terminal event. Nothing is delivered to the sink in this case.
	OutcomeEndedWithoutSignal Outcome = "stream_ended"
)

// Event names understood on the backend stream.
const (
	EventToken = "token"
	EventDone  = "done"
	EventError = "error"
)

// readBufferSize is the size of a single read from the response body.
const readBufferSize = 4096

// Sink receives the notifications of one session. Calls are made
// sequentially, in frame order, from the goroutine running Start.
type Sink interface {
	// OnChunk receives the text of a token event.
	OnChunk(content string)

	// OnDone receives the single terminal payload.
	OnDone(payload json.RawMessage)
}

// SinkFuncs adapts two functions to a Sink. Nil functions are skipped.
type SinkFuncs struct {
	Chunk func(content string)
	Done  func(payload json.RawMessage)
}

// OnChunk implements Sink.
func (f SinkFuncs) OnChunk(content string) {
	if f.Chunk != nil {
		f.Chunk(content)
	}
}

// OnDone implements Sink.
func (f SinkFuncs) OnDone(payload json.RawMessage) {
	if f.Done != nil {
		f.Done(payload)
	}
}

// StoppedPayload is delivered to OnDone when a session is cancelled.
var StoppedPayload = json.RawMessage(`{"stopped":true}`)

// Bridge runs chat stream sessions against the backend.
//
// Every session shares one cancellation flag. Stop sets it, the reading
// session notices it at its next inbound chunk, and the next Start clears
// it. Running two sessions at once is unsupported: a Stop would cancel
// whichever reads a chunk first.
type Bridge struct {
	client *Client
	path   string

	cancel atomic.Bool
	active atomic.Int32

	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewBridge creates a bridge posting to path on the backend.
func NewBridge(client *Client, path string, logger *slog.Logger, m *metrics.Collector) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		client:  client,
		path:    path,
		logger:  logger.With("component", "upstream.stream"),
		metrics: m,
	}
}

// Stop asks the active session to end. It is idempotent and returns
// immediately.
func (b *Bridge) Stop() {
	b.cancel.Store(true)
}

// Start opens a stream with payload as the query and blocks until it ends.
//
// Errors before the stream opens (no port, transport failure, non-2xx) are
// returned and nothing is delivered to sink. Once streaming, every failure is
// reported through sink.OnDone and the returned error is nil.
func (b *Bridge) Start(ctx context.Context, payload json.RawMessage, sink Sink) (Outcome, error) {
	sessionID := uuid.NewString()
	ctx = logging.WithSessionID(ctx, sessionID)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "upstream.stream")
	defer span.End()
	span.SetAttributes(attribute.String("stream.session_id", sessionID))

	logger := b.logger.With("session_id", sessionID)

	b.cancel.Store(false)
	if n := b.active.Add(1); n > 1 {
		logger.Warn("concurrent stream sessions share one stop flag", "active", n)
	}
	defer b.active.Add(-1)

	resp, err := b.client.do(ctx, b.client.stream, http.MethodPost, b.path, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeLabel(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := upstreamError(resp)
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream")
		return "", err
	}

	b.metrics.StreamStarted()
	start := time.Now()
	logger.Info("stream opened")

	s := &session{bridge: b, sink: sink, logger: logger, decoder: sse.NewDecoder()}
	outcome := s.run(ctx, resp.Body)

	span.SetAttributes(
		attribute.String("stream.outcome", string(outcome)),
		attribute.Int("stream.tokens", s.tokens),
	)
	b.metrics.RecordStreamEnd(string(outcome), time.Since(start))
	logger.Info("stream closed",
		"outcome", outcome,
		"tokens", s.tokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}

// session holds the per-invocation state of one stream.
type session struct {
	bridge  *Bridge
	sink    Sink
	logger  *slog.Logger
	decoder *sse.Decoder
	tokens  int
}

func (s *session) run(ctx context.Context, body io.Reader) Outcome {
	buf := make([]byte, readBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if s.bridge.cancel.CompareAndSwap(true, false) {
				return s.cancelled("stop requested")
			}
			for _, ev := range s.decoder.Feed(buf[:n]) {
				if outcome, terminal := s.handle(ev); terminal {
					return outcome
				}
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if s.decoder.Buffered() > 0 {
				s.logger.Debug("stream ended inside a frame", "buffered_bytes", s.decoder.Buffered())
			}
			return OutcomeEndedWithoutSignal
		case ctx.Err() != nil:
			return s.cancelled("caller cancelled")
		default:
			s.logger.Warn("stream read failed", "error", err)
			s.sink.OnDone(errorPayload(err.Error()))
			return OutcomeErrorReported
		}
	}
}

func (s *session) cancelled(reason string) Outcome {
	s.bridge.cancel.Store(false)
	s.logger.Info("stream cancelled", "reason", reason)
	s.sink.OnDone(StoppedPayload)
	return OutcomeCancelled
}

// handle classifies one event and reports whether it ended the session.
func (s *session) handle(ev sse.Event) (Outcome, bool) {
	if ev.Data == "" {
		return "", false
	}

	switch ev.Name {
	case EventToken:
		content, err := tokenContent(ev.Data)
		if err != nil {
			s.protocolError(ev, err)
		}
		if content != "" {
			s.tokens++
			s.bridge.metrics.RecordStreamToken()
			s.sink.OnChunk(content)
		}
		return "", false

	case EventDone:
		payload := json.RawMessage(ev.Data)
		if !json.Valid(payload) {
			s.protocolError(ev, errNotJSON)
			payload = json.RawMessage("{}")
		}
		s.sink.OnDone(payload)
		return OutcomeCompleted, true

	case EventError:
		payload := json.RawMessage(ev.Data)
		if !json.Valid(payload) {
			s.protocolError(ev, errNotJSON)
			payload = errorPayload(ev.Data)
		}
		s.sink.OnDone(payload)
		return OutcomeErrorReported, true

	default:
		s.logger.Debug("ignoring stream event", "event", ev.Name)
		return "", false
	}
}

// errNotJSON is the cause recorded for payloads that fail JSON validation.
var errNotJSON = errors.New("payload is not valid JSON")

func (s *session) protocolError(ev sse.Event, cause error) {
	err := &StreamProtocolError{Event: ev.Name, Payload: ev.Data, Cause: cause}
	s.logger.Debug("using fallback for stream frame", "error", err)
}

// tokenContent extracts the "content" string of a token payload. Text that
// is not JSON at all is taken as the content itself and the parse error is
// returned alongside it. Valid JSON without a string "content" field,
// including scalars and arrays, yields empty content.
func tokenContent(data string) (string, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return data, err
	}
	token, ok := value.(map[string]any)
	if !ok {
		return "", nil
	}
	content, _ := token["content"].(string)
	return content, nil
}

func errorPayload(msg string) json.RawMessage {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	return payload
}
