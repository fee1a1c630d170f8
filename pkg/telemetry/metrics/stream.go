package metrics

import (
	"time"

	"ragkit-hq/bridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks chat streaming sessions.
//
// Metrics:
//   - ragkit_bridge_stream_sessions_total: finished sessions by outcome
//   - ragkit_bridge_stream_duration_seconds: session duration histogram
//   - ragkit_bridge_stream_tokens_total: chunk notifications delivered
//   - ragkit_bridge_stream_active: sessions currently open
type StreamMetrics struct {
	sessionsTotal *prometheus.CounterVec
	duration      prometheus.Histogram
	tokensTotal   prometheus.Counter
	active        prometheus.Gauge
}

// NewStreamMetrics creates and registers stream metrics.
func NewStreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		sessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_sessions_total",
				Help:      "Finished chat stream sessions by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_duration_seconds",
				Help:      "Duration of chat stream sessions",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		tokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_tokens_total",
				Help:      "Chunk notifications delivered to stream subscribers",
			},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_active",
				Help:      "Chat stream sessions currently open",
			},
		),
	}

	registry.MustRegister(sm.sessionsTotal, sm.duration, sm.tokensTotal, sm.active)
	return sm
}

// RecordEnd records a finished session.
func (sm *StreamMetrics) RecordEnd(outcome string, duration time.Duration) {
	sm.sessionsTotal.WithLabelValues(outcome).Inc()
	sm.duration.Observe(duration.Seconds())
	sm.active.Dec()
}
