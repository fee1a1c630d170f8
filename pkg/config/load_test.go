package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"backend.mode", cfg.Backend.Mode, ModeProduction},
		{"backend.health_path", cfg.Backend.HealthPath, "/health"},
		{"backend.readiness.max_attempts", cfg.Backend.Readiness.MaxAttempts, 30},
		{"backend.readiness.interval", cfg.Backend.Readiness.Interval, time.Second},
		{"backend.readiness.attempt_timeout", cfg.Backend.Readiness.AttemptTimeout, time.Second},
		{"backend.shutdown.sweep", cfg.Backend.Shutdown.Sweep, true},
		{"proxy.request_timeout", cfg.Proxy.RequestTimeout, 10 * time.Second},
		{"bridge.listen_address", cfg.Bridge.ListenAddress, "127.0.0.1:7878"},
		{"bridge.cors.enabled", cfg.Bridge.CORS.Enabled, true},
		{"telemetry.metrics.enabled", cfg.Telemetry.Metrics.Enabled, true},
		{"telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  mode: development
  readiness:
    max_attempts: 5
    interval: 250ms
  shutdown:
    sweep: false
bridge:
  listen_address: 127.0.0.1:9000
telemetry:
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Backend.Mode != ModeDevelopment {
		t.Errorf("Mode = %q, want development", cfg.Backend.Mode)
	}
	if cfg.Backend.Readiness.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Backend.Readiness.MaxAttempts)
	}
	if cfg.Backend.Readiness.Interval != 250*time.Millisecond {
		t.Errorf("Interval = %v, want 250ms", cfg.Backend.Readiness.Interval)
	}
	if cfg.Backend.Readiness.AttemptTimeout != DefaultReadinessTimeout {
		t.Errorf("AttemptTimeout = %v, want default", cfg.Backend.Readiness.AttemptTimeout)
	}
	if cfg.Backend.Shutdown.Sweep {
		t.Error("Sweep should be disabled by the file")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics should be disabled by the file")
	}
	if cfg.Bridge.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("ListenAddress = %q", cfg.Bridge.ListenAddress)
	}
	if cfg.Backend.Dev.Module != DefaultDevModule {
		t.Errorf("Dev.Module = %q, want default", cfg.Backend.Dev.Module)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "failed to read") {
			t.Errorf("expected read error, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "backend: [unterminated")
		_, err := LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), "failed to parse") {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "backend:\n  mode: staging\n")
		_, err := LoadConfig(path)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Errors[0].Field != "backend.mode" {
			t.Errorf("Field = %q, want backend.mode", verr.Errors[0].Field)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "backend:\n  mode: development\n")

	t.Setenv("RAGKIT_BACKEND_MODE", "production")
	t.Setenv("RAGKIT_BACKEND_READINESS_MAX_ATTEMPTS", "3")
	t.Setenv("RAGKIT_PROXY_REQUEST_TIMEOUT", "2s")
	t.Setenv("RAGKIT_BACKEND_SHUTDOWN_SWEEP", "false")
	t.Setenv("RAGKIT_TELEMETRY_LOGGING_LEVEL", "debug")
	t.Setenv("RAGKIT_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("RAGKIT_BRIDGE_READ_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Backend.Mode != ModeProduction {
		t.Errorf("Mode = %q, want production", cfg.Backend.Mode)
	}
	if cfg.Backend.Readiness.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Backend.Readiness.MaxAttempts)
	}
	if cfg.Proxy.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v, want 2s", cfg.Proxy.RequestTimeout)
	}
	if cfg.Backend.Shutdown.Sweep {
		t.Error("Sweep should be disabled by env")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("SampleRatio = %v, want 0.25", cfg.Telemetry.Tracing.SampleRatio)
	}
	if cfg.Bridge.ReadTimeout != DefaultReadTimeout {
		t.Errorf("unparseable override should be ignored, got %v", cfg.Bridge.ReadTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesOverrides(t *testing.T) {
	t.Setenv("RAGKIT_TELEMETRY_LOGGING_FORMAT", "xml")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("expected validation error after overrides, got %v", err)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Bridge.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default", cfg.Bridge.ListenAddress)
	}
}
