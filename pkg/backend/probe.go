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
	"go.opentelemetry.io/otel/codes"
)

// Prober polls the backend health endpoint until it answers with a 2xx.
// Transport errors and non-2xx responses are treated alike.
type Prober struct {
	host        string
	path        string
	maxAttempts int
	interval    time.Duration
	timeout     time.Duration

	client  *http.Client
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewProber creates a prober for the configured host and health path.
func NewProber(cfg config.BackendConfig, client *http.Client, clock Clock, logger *slog.Logger, m *metrics.Collector) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		host:        cfg.Host,
		path:        cfg.HealthPath,
		maxAttempts: cfg.Readiness.MaxAttempts,
		interval:    cfg.Readiness.Interval,
		timeout:     cfg.Readiness.AttemptTimeout,
		client:      client,
		clock:       clock,
		logger:      logger.With("component", "backend.prober"),
		metrics:     m,
	}
}

// Wait blocks until the backend on port reports healthy. It makes at most
// maxAttempts checks, sleeping interval between failed ones, and returns a
// *StartupTimeoutError when every check fails.
func (p *Prober) Wait(ctx context.Context, port int) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "backend.wait_ready")
	defer span.End()
	span.SetAttributes(attribute.Int("backend.port", port))

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.Check(ctx, port)
		p.metrics.RecordProbeAttempt(lastErr == nil)
		if lastErr == nil {
			span.SetAttributes(attribute.Int("backend.probe_attempts", attempt))
			p.logger.Info("backend ready", "port", port, "attempts", attempt)
			return nil
		}

		p.logger.Debug("backend not ready yet",
			"port", port,
			"attempt", attempt,
			"max_attempts", p.maxAttempts,
			"error", lastErr,
		)

		if attempt == p.maxAttempts {
			break
		}
		if err := p.clock.Sleep(ctx, p.interval); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return err
		}
	}

	err := &StartupTimeoutError{Port: port, Attempts: p.maxAttempts, LastErr: lastErr}
	span.RecordError(err)
	span.SetStatus(codes.Error, "startup timeout")
	return err
}

// Check performs a single health request bounded by the attempt timeout.
func (p *Prober) Check(ctx context.Context, port int) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := "http://" + net.JoinHostPort(p.host, strconv.Itoa(port)) + p.path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
