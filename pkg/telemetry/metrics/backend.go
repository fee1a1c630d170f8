package metrics

import (
	"time"

	"ragkit-hq/bridge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Phases tracked by the backend_phase gauge.
var knownPhases = []string{"idle", "starting", "ready", "failed", "stopping", "stopped"}

// BackendMetrics tracks the supervised backend process.
//
// Metrics:
//   - ragkit_bridge_backend_phase: 1 for the current phase, 0 otherwise
//   - ragkit_bridge_backend_starts_total: start attempts by mode and result
//   - ragkit_bridge_backend_start_duration_seconds: time to readiness
//   - ragkit_bridge_backend_probe_attempts_total: readiness probes by result
//   - ragkit_bridge_backend_watchdog_checks_total: watchdog checks by result
//   - ragkit_bridge_backend_shutdown_steps_total: shutdown steps by step and result
type BackendMetrics struct {
	phase          *prometheus.GaugeVec
	startsTotal    *prometheus.CounterVec
	startDuration  *prometheus.HistogramVec
	probesTotal    *prometheus.CounterVec
	watchdogTotal  *prometheus.CounterVec
	shutdownsTotal *prometheus.CounterVec
}

// NewBackendMetrics creates and registers backend metrics.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_phase",
				Help:      "Current backend lifecycle phase (1 = active)",
			},
			[]string{"phase"},
		),
		startsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_starts_total",
				Help:      "Backend start attempts by launch mode and result",
			},
			[]string{"mode", "result"},
		),
		startDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_start_duration_seconds",
				Help:      "Time from port allocation to readiness or failure",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"mode"},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_probe_attempts_total",
				Help:      "Readiness health checks by result",
			},
			[]string{"result"},
		),
		watchdogTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_watchdog_checks_total",
				Help:      "Periodic liveness checks by result",
			},
			[]string{"result"},
		),
		shutdownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_shutdown_steps_total",
				Help:      "Shutdown sequence steps by step and result",
			},
			[]string{"step", "result"},
		),
	}

	registry.MustRegister(
		bm.phase,
		bm.startsTotal,
		bm.startDuration,
		bm.probesTotal,
		bm.watchdogTotal,
		bm.shutdownsTotal,
	)

	return bm
}

// SetPhase sets the gauge for phase to 1 and every other known phase to 0.
func (bm *BackendMetrics) SetPhase(phase string) {
	for _, p := range knownPhases {
		bm.phase.WithLabelValues(p).Set(0)
	}
	bm.phase.WithLabelValues(phase).Set(1)
}

// RecordStart records one start attempt.
func (bm *BackendMetrics) RecordStart(mode, result string, duration time.Duration) {
	bm.startsTotal.WithLabelValues(mode, result).Inc()
	bm.startDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordProbe records one readiness check.
func (bm *BackendMetrics) RecordProbe(success bool) {
	bm.probesTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordWatchdog records one watchdog check.
func (bm *BackendMetrics) RecordWatchdog(healthy bool) {
	bm.watchdogTotal.WithLabelValues(resultLabel(healthy)).Inc()
}

// RecordShutdownStep records one shutdown step.
func (bm *BackendMetrics) RecordShutdownStep(step, result string) {
	bm.shutdownsTotal.WithLabelValues(step, result).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
