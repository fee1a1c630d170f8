package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/telemetry/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "ragkit-hq/bridge/pkg/backend"

// Phase is the supervisor's view of the backend lifecycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseStarting Phase = "starting"
	PhaseReady    Phase = "ready"
	PhaseFailed   Phase = "failed"
	PhaseStopping Phase = "stopping"
	PhaseStopped  Phase = "stopped"
)

// Status is a point-in-time report on the supervised backend.
type Status struct {
	Phase   Phase       `json:"phase"`
	Mode    string      `json:"mode"`
	Port    int         `json:"port,omitempty"`
	Pid     int         `json:"pid,omitempty"`
	Kind    ProcessKind `json:"kind,omitempty"`
	Since   time.Time   `json:"since"`
	Error   string      `json:"error,omitempty"`
	Healthy *bool       `json:"healthy,omitempty"`

	LastCheck time.Time `json:"last_check,omitzero"`
}

// Supervisor owns the single backend of this run.
type Supervisor struct {
	cfg       config.BackendConfig
	store     *Store
	allocator *PortAllocator
	spawner   Spawner
	prober    *Prober
	sequencer *Sequencer
	clock     Clock
	logger    *slog.Logger
	metrics   *metrics.Collector

	mu        sync.RWMutex
	phase     Phase
	since     time.Time
	lastErr   error
	healthy   *bool
	lastCheck time.Time
	stopOnce  sync.Once
	stopErr   error
}

// Option customizes a Supervisor.
type Option func(*supervisorOptions)

type supervisorOptions struct {
	logger  *slog.Logger
	metrics *metrics.Collector
	clock   Clock
	spawner Spawner
	sweeper Sweeper
	client  *http.Client
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *supervisorOptions) { o.logger = l } }

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option { return func(o *supervisorOptions) { o.metrics = m } }

// WithClock replaces the wall clock used for probing and grace periods.
func WithClock(c Clock) Option { return func(o *supervisorOptions) { o.clock = c } }

// WithSpawner replaces the process launcher.
func WithSpawner(s Spawner) Option { return func(o *supervisorOptions) { o.spawner = s } }

// WithSweeper replaces the kill-by-name sweep.
func WithSweeper(s Sweeper) Option { return func(o *supervisorOptions) { o.sweeper = s } }

// WithHTTPClient sets the client used for health and shutdown requests.
func WithHTTPClient(c *http.Client) Option { return func(o *supervisorOptions) { o.client = c } }

// NewSupervisor wires the lifecycle components for cfg.
func NewSupervisor(cfg config.BackendConfig, opts ...Option) *Supervisor {
	o := supervisorOptions{
		logger: slog.Default(),
		clock:  SystemClock{},
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.spawner == nil {
		o.spawner = NewLauncher(cfg, o.logger)
	}

	store := NewStore()
	s := &Supervisor{
		cfg:       cfg,
		store:     store,
		allocator: NewPortAllocator(cfg.Host, cfg.MaxPortAttempts, o.logger),
		spawner:   o.spawner,
		prober:    NewProber(cfg, o.client, o.clock, o.logger, o.metrics),
		sequencer: NewSequencer(cfg, store, o.client, o.sweeper, o.clock, o.logger, o.metrics),
		clock:     o.clock,
		logger:    o.logger.With("component", "backend.supervisor"),
		metrics:   o.metrics,
		phase:     PhaseIdle,
		since:     o.clock.Now(),
	}
	s.metrics.SetBackendPhase(string(PhaseIdle))
	return s
}

// Store returns the lifecycle record read by the proxy and streaming bridge.
func (s *Supervisor) Store() *Store {
	return s.store
}

// Prober returns the readiness prober, shared with the watchdog.
func (s *Supervisor) Prober() *Prober {
	return s.prober
}

// Start allocates a port, launches the backend, records it, and waits for it
// to become ready. The handle is recorded before readiness is known so that a
// concurrent Shutdown can still find and kill the process.
//
// Failures are returned and leave the supervisor in PhaseFailed; the backend
// is not relaunched.
func (s *Supervisor) Start(ctx context.Context) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "backend.start")
	defer span.End()
	span.SetAttributes(attribute.String("backend.mode", s.cfg.Mode))

	if !s.transition(PhaseIdle, PhaseStarting) {
		return ErrAlreadyLaunched
	}

	started := s.clock.Now()
	result := "ready"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
			s.setPhase(PhaseFailed, err)
			s.logger.Error("backend startup failed", "error", err)
		}
		s.metrics.RecordBackendStart(s.cfg.Mode, result, s.clock.Now().Sub(started))
	}()

	port, err := s.allocator.Allocate()
	if err != nil {
		result = "resource_exhausted"
		return err
	}

	proc, err := s.spawner.Launch(ctx, port)
	if err != nil {
		result = "launch_failed"
		return err
	}
	if err := s.store.SetLaunched(port, proc); err != nil {
		result = "already_started"
		if errors.Is(err, ErrShuttingDown) {
			result = "shutting_down"
		}
		if kerr := s.sequencer.kill(proc); kerr != nil {
			s.logger.Warn("failed to kill unrecorded backend", "pid", proc.Pid(), "error", kerr)
		}
		return err
	}
	span.SetAttributes(attribute.Int("backend.port", port))

	if err := s.prober.Wait(ctx, port); err != nil {
		if errors.Is(err, ErrStartupTimeout) {
			result = "startup_timeout"
		} else {
			result = "cancelled"
		}
		return err
	}

	s.setPhase(PhaseReady, nil)
	return nil
}

// Shutdown runs the teardown sequence once. Later calls return the first
// call's result. Failures are logged, never fatal.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.setPhase(PhaseStopping, nil)
		s.stopErr = s.sequencer.Shutdown(ctx)
		if s.stopErr != nil {
			s.logger.Warn("backend shutdown incomplete", "error", s.stopErr)
		}
		s.setPhase(PhaseStopped, nil)
	})
	return s.stopErr
}

// Status reports the current lifecycle state.
func (s *Supervisor) Status() Status {
	h := s.store.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Phase:     s.phase,
		Mode:      s.cfg.Mode,
		Port:      h.Port,
		Since:     s.since,
		Healthy:   s.healthy,
		LastCheck: s.lastCheck,
	}
	if h.Process != nil {
		st.Pid = h.Process.Pid()
		st.Kind = h.Process.Kind()
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Phase returns the current phase.
func (s *Supervisor) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// recordHealth stores the result of a watchdog check.
func (s *Supervisor) recordHealth(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = &healthy
	s.lastCheck = s.clock.Now()
}

func (s *Supervisor) transition(from, to Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return false
	}
	s.phase = to
	s.since = s.clock.Now()
	s.metrics.SetBackendPhase(string(to))
	return true
}

func (s *Supervisor) setPhase(p Phase, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A failed or in-flight startup must not overwrite a shutdown.
	if (s.phase == PhaseStopping || s.phase == PhaseStopped) && (p == PhaseReady || p == PhaseFailed) {
		return
	}
	s.phase = p
	s.since = s.clock.Now()
	s.lastErr = err
	s.metrics.SetBackendPhase(string(p))
}
