// Package metrics provides Prometheus metrics collection for the ragkit bridge.
//
// # Metrics Categories
//
//   - Backend Metrics: lifecycle phase, start attempts and duration, readiness
//     probes, watchdog checks, and shutdown steps
//   - Request Metrics: proxied calls by method and outcome, with latency
//   - Stream Metrics: chat stream sessions by outcome, delivered tokens, and
//     active session count
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCall("GET", "success", 120*time.Millisecond)
//	http.Handle("/metrics", collector.Handler())
//
// A nil *Collector is valid and records nothing, so components can accept one
// unconditionally.
package metrics
