package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const testTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestHTTPMiddleware(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	var got trace.SpanContext
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = trace.SpanContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/bridge/call", nil)
	req.Header.Set("traceparent", testTraceParent)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("extracted trace id = %s", got.TraceID())
	}
	if rec.Header().Get("X-Trace-ID") != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q", rec.Header().Get("X-Trace-ID"))
	}
}

func TestHTTPMiddleware_NoTraceParent(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Trace-ID") != "" {
		t.Errorf("X-Trace-ID set without incoming context: %q", rec.Header().Get("X-Trace-ID"))
	}
}

func TestInjectExtractRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	in := http.Header{}
	in.Set("traceparent", testTraceParent)
	ctx := Extract(t.Context(), in)

	out := http.Header{}
	Inject(ctx, out)

	if out.Get("traceparent") != testTraceParent {
		t.Errorf("traceparent = %q, want %q", out.Get("traceparent"), testTraceParent)
	}
}
