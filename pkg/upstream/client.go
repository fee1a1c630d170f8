package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/telemetry/logging"
	"ragkit-hq/bridge/pkg/telemetry/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const tracerName = "ragkit-hq/bridge/pkg/upstream"

// PortSource reports the backend port, if one is known. *backend.Store
// implements it.
type PortSource interface {
	Port() (int, bool)
}

// Client forwards calls to the backend. The port is read from the
// PortSource on every call, never cached.
type Client struct {
	ports   PortSource
	host    string
	timeout time.Duration

	// http carries ordinary calls; stream has no overall timeout.
	http   *http.Client
	stream *http.Client

	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewClient creates a client for the backend at cfg.Backend.Host.
func NewClient(cfg *config.Config, ports PortSource, logger *slog.Logger, m *metrics.Collector) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		Proxy:               nil, // loopback only
		MaxIdleConns:        cfg.Proxy.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Proxy.MaxIdleConns,
		IdleConnTimeout:     cfg.Proxy.IdleConnTimeout,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Proxy.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Client{
		ports:   ports,
		host:    cfg.Backend.Host,
		timeout: cfg.Proxy.RequestTimeout,
		http:    &http.Client{Transport: transport, Timeout: cfg.Proxy.RequestTimeout},
		stream:  &http.Client{Transport: transport},
		logger:  logger.With("component", "upstream.client"),
		metrics: m,
	}
}

// BaseURL returns the loopback URL of the backend, or ErrNotReady.
func (c *Client) BaseURL() (string, error) {
	port, ok := c.ports.Port()
	if !ok {
		return "", ErrNotReady
	}
	return "http://" + net.JoinHostPort(c.host, strconv.Itoa(port)), nil
}

// Call sends one request and returns the JSON body of a 2xx response
// verbatim. An empty 2xx body is returned as JSON null. body may be nil.
func (c *Client) Call(ctx context.Context, method, path string, body json.RawMessage) (result json.RawMessage, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "upstream.call")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	start := time.Now()
	defer func() {
		c.metrics.RecordCall(method, outcomeLabel(err), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcomeLabel(err))
			c.logger.Warn("backend call failed",
				"method", method,
				"path", path,
				"request_id", logging.GetRequestID(ctx),
				"error", err,
			)
		}
	}()

	resp, err := c.do(ctx, c.http, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Cause: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, &ParseError{RawResponse: string(data), Cause: errors.New("response body is not valid JSON")}
	}

	c.logger.Debug("backend call completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return json.RawMessage(data), nil
}

// do issues the request. Only transport failures are returned as errors;
// status handling is left to the caller.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, body json.RawMessage) (*http.Response, error) {
	base, err := c.BaseURL()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Cause: err}
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Cause: err}
	}
	return resp, nil
}

// upstreamError drains resp into an *UpstreamError. The caller closes the body.
func upstreamError(resp *http.Response) *UpstreamError {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	text := string(data)
	if err != nil || !utf8.ValidString(text) {
		text = UnreadableBody
	}
	return &UpstreamError{Status: resp.StatusCode, Body: text}
}
