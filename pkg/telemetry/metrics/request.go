package metrics

import (
	"time"

	"ragkit-hq/bridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks calls forwarded to the backend.
//
// Metrics:
//   - ragkit_bridge_calls_total: proxied calls by method and outcome
//   - ragkit_bridge_call_duration_seconds: call latency histogram
type RequestMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "calls_total",
				Help:      "Calls forwarded to the backend by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "call_duration_seconds",
				Help:      "Duration of calls forwarded to the backend",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
	}

	registry.MustRegister(rm.callsTotal, rm.callDuration)
	return rm
}

// RecordCall records one proxied call.
func (rm *RequestMetrics) RecordCall(method, outcome string, duration time.Duration) {
	rm.callsTotal.WithLabelValues(method, outcome).Inc()
	rm.callDuration.WithLabelValues(method).Observe(duration.Seconds())
}
