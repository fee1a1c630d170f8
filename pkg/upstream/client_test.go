package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/telemetry/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticPort is a PortSource with a fixed answer.
type staticPort struct {
	port int
	ok   bool
}

func (s staticPort) Port() (int, bool) { return s.port, s.ok }

func portOf(t *testing.T, srv *httptest.Server) staticPort {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	_, p, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return staticPort{port: port, ok: true}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.Host = "127.0.0.1"
	return cfg
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	return NewClient(testConfig(), portOf(t, srv), nil, nil)
}

func TestClient_Call_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/llm/config", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-123", r.Header.Get("X-Request-ID"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"model":"mistral"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"provider":"ollama","model":"mistral"}`))
	}))
	defer srv.Close()

	ctx := logging.WithRequestID(context.Background(), "req-123")
	result, err := newTestClient(t, srv).Call(ctx, http.MethodPut, "/api/llm/config", json.RawMessage(`{"model":"mistral"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"ollama","model":"mistral"}`, string(result))
}

func TestClient_Call_NoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Equal(t, int64(0), r.ContentLength)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv).Call(context.Background(), http.MethodPost, "/api/chat/new", nil)

	require.NoError(t, err)
	assert.Equal(t, "null", string(result))
}

func TestClient_Call_Upstream404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Call(context.Background(), http.MethodGet, "/api/missing", nil)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "got %T: %v", err, err)
	assert.Equal(t, 404, upstream.Status)
	assert.Equal(t, "not found", upstream.Body)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestClient_Call_UpstreamUnreadableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Call(context.Background(), http.MethodGet, "/x", nil)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, UnreadableBody, upstream.Body)
}

func TestClient_Call_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Call(context.Background(), http.MethodGet, "/x", nil)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "<html>oops</html>", parseErr.RawResponse)
}

func TestClient_Call_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	client := NewClient(testConfig(), staticPort{port: port, ok: true}, nil, nil)
	_, err = client.Call(context.Background(), http.MethodGet, "/health", nil)

	var transport *TransportError
	require.True(t, errors.As(err, &transport), "got %T: %v", err, err)
	assert.Equal(t, "/health", transport.Path)
}

func TestClient_Call_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.Proxy.RequestTimeout = 50 * time.Millisecond
	client := NewClient(cfg, portOf(t, srv), nil, nil)

	_, err := client.Call(context.Background(), http.MethodGet, "/slow", nil)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport), "got %T: %v", err, err)
}

func TestClient_Call_NotReady(t *testing.T) {
	client := NewClient(testConfig(), staticPort{}, nil, nil)

	_, err := client.Call(context.Background(), http.MethodGet, "/api/llm/config", nil)

	assert.ErrorIs(t, err, ErrNotReady)
}
