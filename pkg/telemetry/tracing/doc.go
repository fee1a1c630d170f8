// Package tracing installs the OpenTelemetry tracer provider for the bridge.
//
// # Overview
//
// Spans are created around backend startup, readiness probing, shutdown,
// proxied calls, and stream sessions. Each package names its own tracer with
// otel.Tracer; New installs the global provider those tracers resolve to.
//
// # Exporters
//
//   - otlp: OTLP over gRPC to a collector (default localhost:4317)
//   - stdout: JSON spans written to a writer, useful during development
//
// # Sampling
//
// A parent-based ratio sampler is used. Incoming W3C traceparent headers are
// honored by HTTPMiddleware, and outgoing backend requests carry the current
// trace context.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
package tracing
