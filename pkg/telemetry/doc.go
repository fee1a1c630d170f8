// Package telemetry groups the observability packages of the bridge.
//
// # Components
//
//   - logging: slog loggers writing to a daily rolling file, with request
//     and stream session IDs taken from the context
//   - metrics: Prometheus metrics for the backend lifecycle, proxied calls,
//     and chat streams
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC or to stdout
//   - health: liveness, readiness, backend status, and version endpoints
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Every collector method is safe on a nil *metrics.Collector, so components
// take metrics as an optional dependency.
package telemetry
