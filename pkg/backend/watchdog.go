package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ragkit-hq/bridge/pkg/telemetry/metrics"

	"github.com/robfig/cron/v3"
)

// Watchdog periodically health-checks a ready backend and records the result
// on the supervisor. It never restarts the backend.
type Watchdog struct {
	supervisor *Supervisor
	schedule   string
	cron       *cron.Cron
	logger     *slog.Logger
	metrics    *metrics.Collector

	mu      sync.Mutex
	running bool
}

// NewWatchdog creates a watchdog running on a cron schedule such as
// "@every 30s". An empty schedule disables it.
func NewWatchdog(sup *Supervisor, schedule string, logger *slog.Logger, m *metrics.Collector) *Watchdog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watchdog{
		supervisor: sup,
		schedule:   schedule,
		cron:       cron.New(),
		logger:     logger.With("component", "backend.watchdog"),
		metrics:    m,
	}
}

// Start schedules the checks. It stops on its own when ctx is cancelled.
func (w *Watchdog) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.schedule == "" {
		w.logger.Info("watchdog schedule not configured, skipping")
		return nil
	}
	if w.running {
		return fmt.Errorf("watchdog already running")
	}

	if _, err := w.cron.AddFunc(w.schedule, func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("invalid watchdog schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	w.running = true
	w.logger.Info("watchdog started", "schedule", w.schedule)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Check runs one health check if the backend is ready. It reports whether a
// check was made and what it found.
func (w *Watchdog) Check(ctx context.Context) (checked, healthy bool) {
	if w.supervisor.Phase() != PhaseReady {
		return false, false
	}
	port, ok := w.supervisor.Store().Port()
	if !ok {
		return false, false
	}

	err := w.supervisor.Prober().Check(ctx, port)
	healthy = err == nil
	w.supervisor.recordHealth(healthy)
	w.metrics.RecordWatchdogCheck(healthy)

	if healthy {
		w.logger.Debug("backend healthy", "port", port)
	} else {
		w.logger.Warn("backend health check failed", "port", port, "error", err)
	}
	return true, healthy
}

// Stop stops the schedule and waits for a running check to finish.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		<-w.cron.Stop().Done()
		w.running = false
		w.logger.Info("watchdog stopped")
	}
}

// NextRun returns the time of the next scheduled check, if any.
func (w *Watchdog) NextRun() (time.Time, bool) {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}, false
	}
	return entries[0].Next, true
}
