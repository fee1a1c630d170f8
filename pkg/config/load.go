package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RAGKIT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// YAML values are decoded on top of DefaultConfig, remaining zero values are
// defaulted, and the result is validated. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named RAGKIT_SECTION_FIELD.
//
// The loading sequence is:
// 1. Start from DefaultConfig
// 2. Decode the YAML file on top
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like LoadConfigWithEnvOverrides but treats a missing
// file as an empty one. Desktop installs usually ship without a config file.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return LoadConfigWithEnvOverrides(path)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Backend overrides
	envString("BACKEND_MODE", &cfg.Backend.Mode)
	envString("BACKEND_HOST", &cfg.Backend.Host)
	envString("BACKEND_EXECUTABLE", &cfg.Backend.Executable)
	envString("BACKEND_EXECUTABLE_PATH", &cfg.Backend.ExecutablePath)
	envString("BACKEND_DEV_INTERPRETER", &cfg.Backend.Dev.Interpreter)
	envString("BACKEND_DEV_MODULE", &cfg.Backend.Dev.Module)
	envString("BACKEND_DEV_WORKING_DIR", &cfg.Backend.Dev.WorkingDir)
	envString("BACKEND_HEALTH_PATH", &cfg.Backend.HealthPath)
	envString("BACKEND_SHUTDOWN_PATH", &cfg.Backend.ShutdownPath)
	envString("BACKEND_STREAM_PATH", &cfg.Backend.StreamPath)
	envInt("BACKEND_MAX_PORT_ATTEMPTS", &cfg.Backend.MaxPortAttempts)
	envInt("BACKEND_READINESS_MAX_ATTEMPTS", &cfg.Backend.Readiness.MaxAttempts)
	envDuration("BACKEND_READINESS_INTERVAL", &cfg.Backend.Readiness.Interval)
	envDuration("BACKEND_READINESS_ATTEMPT_TIMEOUT", &cfg.Backend.Readiness.AttemptTimeout)
	envDuration("BACKEND_SHUTDOWN_SIGNAL_TIMEOUT", &cfg.Backend.Shutdown.SignalTimeout)
	envDuration("BACKEND_SHUTDOWN_GRACE_PERIOD", &cfg.Backend.Shutdown.GracePeriod)
	envBool("BACKEND_SHUTDOWN_SWEEP", &cfg.Backend.Shutdown.Sweep)
	envString("BACKEND_WATCHDOG_SCHEDULE", &cfg.Backend.WatchdogSchedule)

	// Proxy overrides
	envDuration("PROXY_REQUEST_TIMEOUT", &cfg.Proxy.RequestTimeout)
	envInt("PROXY_MAX_IDLE_CONNS", &cfg.Proxy.MaxIdleConns)
	envDuration("PROXY_IDLE_CONN_TIMEOUT", &cfg.Proxy.IdleConnTimeout)

	// Bridge overrides
	envString("BRIDGE_LISTEN_ADDRESS", &cfg.Bridge.ListenAddress)
	envDuration("BRIDGE_READ_TIMEOUT", &cfg.Bridge.ReadTimeout)
	envDuration("BRIDGE_WRITE_TIMEOUT", &cfg.Bridge.WriteTimeout)
	envDuration("BRIDGE_IDLE_TIMEOUT", &cfg.Bridge.IdleTimeout)
	envDuration("BRIDGE_SHUTDOWN_TIMEOUT", &cfg.Bridge.ShutdownTimeout)
	envBool("BRIDGE_CORS_ENABLED", &cfg.Bridge.CORS.Enabled)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envString("TELEMETRY_LOGGING_DIR", &cfg.Telemetry.Logging.Dir)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_EXPORTER", &cfg.Telemetry.Tracing.Exporter)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// The env helpers leave the target untouched when the variable is unset or
// does not parse.

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
