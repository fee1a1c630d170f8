package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ragkit-hq/bridge/pkg/backend"
	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/proxy/handlers"
	"ragkit-hq/bridge/pkg/proxy/middleware"
	"ragkit-hq/bridge/pkg/telemetry/health"
	"ragkit-hq/bridge/pkg/telemetry/metrics"
	"ragkit-hq/bridge/pkg/telemetry/tracing"
	"ragkit-hq/bridge/pkg/upstream"
)

// Route paths of the consumer-facing surface.
const (
	PathCall       = "/bridge/call"
	PathCommands   = "/bridge/commands"
	PathChatStream = "/bridge/chat/stream"
	PathStreamStop = "/bridge/chat/stream/stop"
	PathExit       = "/bridge/exit"
)

// Server is the bridge between the UI and the backend process.
type Server struct {
	config     *config.Config
	supervisor *backend.Supervisor
	client     *upstream.Client
	bridge     *upstream.Bridge
	checker    *health.Checker
	metrics    *metrics.Collector
	version    health.VersionInfo
	logger     *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	listening    chan struct{}
	cancelLaunch context.CancelFunc

	exitChan     chan struct{}
	exitOnce     sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics sets the metrics collector served on the metrics path.
func WithMetrics(m *metrics.Collector) Option { return func(s *Server) { s.metrics = m } }

// WithVersion sets the build information served on /version.
func WithVersion(v health.VersionInfo) Option { return func(s *Server) { s.version = v } }

// New creates a server in front of sup.
func New(cfg *config.Config, sup *backend.Supervisor, opts ...Option) *Server {
	s := &Server{
		config:     cfg,
		supervisor: sup,
		logger:     slog.Default(),
		listening:  make(chan struct{}),
		exitChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.client = upstream.NewClient(cfg, sup.Store(), s.logger, s.metrics)
	s.bridge = upstream.NewBridge(s.client, cfg.Backend.StreamPath, s.logger, s.metrics)
	s.checker = health.New(cfg.Backend.Readiness.AttemptTimeout)
	s.checker.RegisterCheck("backend", health.BackendCheck(sup))
	s.logger = s.logger.With("component", "server")
	return s
}

// Client returns the upstream client used for forward calls.
func (s *Server) Client() *upstream.Client {
	return s.client
}

// Start listens, launches the backend in the background, and blocks until
// the context is cancelled, a termination signal arrives, the UI requests
// exit, or the listener fails. Every path except a listener failure runs
// Shutdown before returning.
//
// A backend that fails to start is logged and the server keeps serving;
// calls answer 503 until a port is known.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.config.Bridge.ListenAddress)
	if err != nil {
		s.setStopped()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Bridge.ListenAddress, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Bridge.ReadTimeout,
		WriteTimeout: s.config.Bridge.WriteTimeout,
		IdleTimeout:  s.config.Bridge.IdleTimeout,
	}
	launchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelLaunch = cancel
	s.mu.Unlock()
	close(s.listening)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting bridge server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	go s.launchBackend(launchCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case <-s.exitChan:
		s.logger.Info("exit requested")
	case err := <-errChan:
		cancel()
		_ = s.supervisor.Shutdown(context.Background())
		s.setStopped()
		return err
	}
	return s.Shutdown(context.Background())
}

func (s *Server) launchBackend(ctx context.Context) {
	if err := s.supervisor.Start(ctx); err != nil {
		// No relaunch; the UI sees the failure through /status.
		s.logger.Error("backend unavailable", "error", err)
		return
	}
	st := s.supervisor.Status()
	s.logger.Info("backend ready", "port", st.Port, "pid", st.Pid, "mode", st.Mode)
}

// RequestExit asks a running Start to shut everything down. It returns
// immediately and is safe to call more than once.
func (s *Server) RequestExit() {
	s.exitOnce.Do(func() { close(s.exitChan) })
}

// Shutdown stops the backend, then drains the HTTP server. Active chat
// streams are stopped first so they do not hold the drain open. Later calls
// return the first call's result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		cancel := s.cancelLaunch
		httpServer := s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Bridge.ShutdownTimeout.String())

		if cancel != nil {
			cancel()
		}
		s.bridge.Stop()

		// Failures here are logged by the supervisor and never block exit.
		_ = s.supervisor.Shutdown(ctx)

		shutdownCtx, cancelDrain := context.WithTimeout(ctx, s.config.Bridge.ShutdownTimeout)
		defer cancelDrain()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				s.shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.setStopped()
		s.logger.Info("bridge server stopped")
	})

	return s.shutdownErr
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// Addr returns the listening address once Start has bound it, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listening is closed once the listener is bound.
func (s *Server) Listening() <-chan struct{} {
	return s.listening
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(PathCall, handlers.NewCallHandler(s.client))
	mux.HandleFunc("GET "+PathCommands, handlers.CommandListHandler)
	mux.Handle(PathCommands+"/{name}", handlers.NewCommandHandler(s.client))
	mux.Handle(PathChatStream, handlers.NewStreamHandler(s.bridge))
	mux.Handle(PathStreamStop, handlers.NewStopHandler(s.bridge))
	mux.Handle(PathExit, handlers.NewExitHandler(s.RequestExit))

	health.Register(mux, s.checker, s.supervisor, s.version)

	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux

	// Only the stream itself runs without a deadline.
	handler = middleware.TimeoutMiddleware(s.config.Proxy.RequestTimeout, PathChatStream)(handler)

	handler = middleware.CORSMiddleware(middleware.NewCORSConfig(s.config.Bridge.CORS))(handler)

	handler = middleware.RequestIDMiddleware(handler)

	handler = middleware.LoggingMiddleware(s.logger)(handler)

	handler = tracing.HTTPMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}
