package metrics

import (
	"time"

	"ragkit-hq/bridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the bridge's Prometheus registry and every metric recorded
// on it. All methods are safe for concurrent use and are no-ops on a nil
// receiver or when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	backendMetrics *BackendMetrics
	requestMetrics *RequestMetrics
	streamMetrics  *StreamMetrics
}

// NewCollector creates a collector and registers all metrics on registry.
// If registry is nil a fresh one is created, with Go runtime and process
// collectors attached.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		backendMetrics: NewBackendMetrics(cfg, registry),
		requestMetrics: NewRequestMetrics(cfg, registry),
		streamMetrics:  NewStreamMetrics(cfg, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// SetBackendPhase marks phase as the current supervisor phase.
func (c *Collector) SetBackendPhase(phase string) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.SetPhase(phase)
}

// RecordBackendStart records a completed start attempt.
//
// Parameters:
//   - mode: "development" or "production"
//   - result: "ready", "launch_failed", "startup_timeout", ...
//   - duration: time from allocation to readiness or failure
func (c *Collector) RecordBackendStart(mode, result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordStart(mode, result, duration)
}

// RecordProbeAttempt records one readiness health check.
func (c *Collector) RecordProbeAttempt(success bool) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordProbe(success)
}

// RecordWatchdogCheck records a periodic liveness check of a ready backend.
func (c *Collector) RecordWatchdogCheck(healthy bool) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordWatchdog(healthy)
}

// RecordShutdownStep records the result of one shutdown step
// ("graceful", "kill", "sweep") as "ok", "failed", or "skipped".
func (c *Collector) RecordShutdownStep(step, result string) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordShutdownStep(step, result)
}

// RecordCall records a proxied call.
//
// Parameters:
//   - method: HTTP method forwarded to the backend
//   - outcome: "success", "upstream", "transport", "not_ready", "parse"
//   - duration: wall time of the call
func (c *Collector) RecordCall(method, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordCall(method, outcome, duration)
}

// StreamStarted increments the active stream gauge.
func (c *Collector) StreamStarted() {
	if !c.enabled() {
		return
	}
	c.streamMetrics.active.Inc()
}

// RecordStreamToken counts one delivered chunk notification.
func (c *Collector) RecordStreamToken() {
	if !c.enabled() {
		return
	}
	c.streamMetrics.tokensTotal.Inc()
}

// RecordStreamEnd records a finished session and decrements the active gauge.
func (c *Collector) RecordStreamEnd(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.RecordEnd(outcome, duration)
}
