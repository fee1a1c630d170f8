package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"ragkit-hq/bridge/pkg/backend"
)

// staticStatus is a StatusSource returning a fixed status.
type staticStatus backend.Status

func (s staticStatus) Status() backend.Status { return backend.Status(s) }

func boolPtr(b bool) *bool { return &b }

// TestNew tests the creation of a new health checker.
func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "default timeout", timeout: 0, expectedTimeout: 5 * time.Second},
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.checks) != 0 {
				t.Errorf("expected 0 checks, got %d", len(checker.checks))
			}
		})
	}
}

// TestRegisterCheck tests registering, replacing, and removing checks.
func TestRegisterCheck(t *testing.T) {
	checker := New(time.Second)

	checker.RegisterCheck("backend", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("watchdog", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("backend", func(ctx context.Context) error { return errors.New("replaced") })

	names := checker.ListChecks()
	sort.Strings(names)
	if strings.Join(names, ",") != "backend,watchdog" {
		t.Errorf("ListChecks() = %v", names)
	}

	status := checker.CheckReadiness(context.Background())
	if status.Checks["backend"].Message != "replaced" {
		t.Errorf("backend check was not replaced: %+v", status.Checks["backend"])
	}

	checker.UnregisterCheck("backend")
	if len(checker.ListChecks()) != 1 {
		t.Errorf("expected 1 check after unregister, got %v", checker.ListChecks())
	}
}

func TestCheckLiveness(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("failing", func(ctx context.Context) error { return errors.New("down") })

	status := checker.CheckLiveness(context.Background())

	if status.Status != StatusOK {
		t.Errorf("expected status %q, got %q", StatusOK, status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return errors.New("b is down") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())

			if status.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, status.Status)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("expected %d results, got %d", len(tt.checks), len(status.Checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	// Ignores its context on purpose.
	checker.RegisterCheck("stuck", func(ctx context.Context) error {
		<-release
		return nil
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("readiness took %v, expected the check timeout to apply", elapsed)
	}
	result := status.Checks["stuck"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestBackendCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  backend.Status
		wantErr string
	}{
		{
			name:   "ready without watchdog result",
			status: backend.Status{Phase: backend.PhaseReady, Port: 51000},
		},
		{
			name:   "ready and healthy",
			status: backend.Status{Phase: backend.PhaseReady, Port: 51000, Healthy: boolPtr(true)},
		},
		{
			name:    "ready but last probe failed",
			status:  backend.Status{Phase: backend.PhaseReady, Port: 51000, Healthy: boolPtr(false)},
			wantErr: "failed its last health check",
		},
		{
			name:    "starting",
			status:  backend.Status{Phase: backend.PhaseStarting},
			wantErr: "backend is starting",
		},
		{
			name:    "failed with cause",
			status:  backend.Status{Phase: backend.PhaseFailed, Error: "startup timeout"},
			wantErr: "backend is failed: startup timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BackendCheck(staticStatus(tt.status))(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	ready := staticStatus{Phase: backend.PhaseReady, Mode: "production", Port: 51234, Pid: 4242}
	starting := staticStatus{Phase: backend.PhaseStarting, Mode: "production"}

	tests := []struct {
		name       string
		src        StatusSource
		method     string
		path       string
		wantCode   int
		wantInBody string
	}{
		{"liveness", starting, http.MethodGet, "/health", http.StatusOK, `"status":"ok"`},
		{"liveness head", starting, http.MethodHead, "/health", http.StatusOK, ""},
		{"liveness post", starting, http.MethodPost, "/health", http.StatusMethodNotAllowed, "Method not allowed"},
		{"ready", ready, http.MethodGet, "/ready", http.StatusOK, `"status":"ready"`},
		{"not ready", starting, http.MethodGet, "/ready", http.StatusServiceUnavailable, "backend is starting"},
		{"status", ready, http.MethodGet, "/status", http.StatusOK, `"port":51234`},
		{"version", ready, http.MethodGet, "/version", http.StatusOK, `"version":"1.2.3"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("backend", BackendCheck(tt.src))
			mux := http.NewServeMux()
			Register(mux, checker, tt.src, VersionInfo{Version: "1.2.3", Commit: "abc"})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Errorf("HEAD returned a body: %s", rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestVersionHandler_GoVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.0.0", "abc", "today")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.GoVersion == "" || info.BuildTime != "today" {
		t.Errorf("unexpected version info %+v", info)
	}
}
