package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/telemetry/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Sweeper terminates every process with the given executable name.
type Sweeper func(ctx context.Context, name string) error

// Shutdown step names, also used as metric labels.
const (
	StepGraceful = "graceful"
	StepKill     = "kill"
	StepSweep    = "sweep"
)

// Sequencer runs the three-step teardown: a graceful shutdown request, a
// forced kill, and a kill-by-name sweep. Every step runs regardless of how
// the previous one went.
type Sequencer struct {
	store *Store

	host          string
	path          string
	executable    string
	signalTimeout time.Duration
	gracePeriod   time.Duration
	sweepEnabled  bool

	client  *http.Client
	sweep   Sweeper
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewSequencer creates a sequencer operating on store. A nil sweeper uses the
// platform's kill-by-name command.
func NewSequencer(cfg config.BackendConfig, store *Store, client *http.Client, sweep Sweeper, clock Clock, logger *slog.Logger, m *metrics.Collector) *Sequencer {
	if client == nil {
		client = &http.Client{}
	}
	if sweep == nil {
		sweep = SweepByName
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		store:         store,
		host:          cfg.Host,
		path:          cfg.ShutdownPath,
		executable:    cfg.Executable,
		signalTimeout: cfg.Shutdown.SignalTimeout,
		gracePeriod:   cfg.Shutdown.GracePeriod,
		sweepEnabled:  cfg.Shutdown.Sweep,
		client:        client,
		sweep:         sweep,
		clock:         clock,
		logger:        logger.With("component", "backend.shutdown"),
		metrics:       m,
	}
}

// Shutdown tears the backend down. It is idempotent and safe when no backend
// was ever started. The returned *ShutdownPartialError, if any, lists failed
// steps for logging; teardown has completed either way.
func (s *Sequencer) Shutdown(ctx context.Context) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "backend.shutdown")
	defer span.End()

	s.store.Close()

	var failed []StepError
	record := func(step string, err error, skipped bool) {
		switch {
		case skipped:
			s.metrics.RecordShutdownStep(step, "skipped")
		case err != nil:
			s.metrics.RecordShutdownStep(step, "failed")
			s.logger.Warn("shutdown step failed", "step", step, "error", err)
			failed = append(failed, StepError{Step: step, Cause: err})
		default:
			s.metrics.RecordShutdownStep(step, "ok")
		}
	}

	// 1. Graceful
	if port, ok := s.store.Port(); ok {
		span.SetAttributes(attribute.Int("backend.port", port))
		record(StepGraceful, s.signal(ctx, port), false)
		_ = s.clock.Sleep(context.WithoutCancel(ctx), s.gracePeriod)
	} else {
		record(StepGraceful, nil, true)
	}

	// 2. Forced
	if proc := s.store.TakeProcess(); proc != nil {
		span.SetAttributes(attribute.Int("backend.pid", proc.Pid()))
		record(StepKill, s.kill(proc), false)
	} else {
		record(StepKill, nil, true)
	}
	s.store.ClearPort()

	// 3. Sweep
	if s.sweepEnabled {
		record(StepSweep, s.sweep(context.WithoutCancel(ctx), s.executable), false)
	} else {
		record(StepSweep, nil, true)
	}

	if len(failed) > 0 {
		err := &ShutdownPartialError{Steps: failed}
		span.RecordError(err)
		return err
	}
	s.logger.Info("backend shut down")
	return nil
}

func (s *Sequencer) signal(ctx context.Context, port int) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.signalTimeout)
	defer cancel()

	url := "http://" + net.JoinHostPort(s.host, strconv.Itoa(port)) + s.path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("shutdown endpoint returned status %d", resp.StatusCode)
	}
	s.logger.Debug("graceful shutdown requested", "port", port)
	return nil
}

func (s *Sequencer) kill(proc Process) error {
	if err := proc.Kill(); err != nil {
		return err
	}
	if w, ok := proc.(Waiter); ok {
		if err := w.Wait(); err != nil {
			return fmt.Errorf("reap pid %d: %w", proc.Pid(), err)
		}
	}
	s.logger.Debug("backend process killed", "pid", proc.Pid(), "kind", proc.Kind())
	return nil
}
