package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "bridge.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateBackend(&cfg.Backend)...)
	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateBridge(&cfg.Bridge)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateBackend(cfg *BackendConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		errs = append(errs, FieldError{
			Field:   "backend.mode",
			Message: fmt.Sprintf("invalid mode %q: must be 'development' or 'production'", cfg.Mode),
		})
	}

	if cfg.Host == "" {
		errs = append(errs, FieldError{Field: "backend.host", Message: "host is required"})
	}
	if cfg.Executable == "" {
		errs = append(errs, FieldError{Field: "backend.executable", Message: "executable name is required"})
	}
	if cfg.Mode == ModeDevelopment && cfg.Dev.Module == "" {
		errs = append(errs, FieldError{
			Field:   "backend.dev.module",
			Message: "module is required in development mode",
		})
	}

	for field, path := range map[string]string{
		"backend.health_path":   cfg.HealthPath,
		"backend.shutdown_path": cfg.ShutdownPath,
		"backend.stream_path":   cfg.StreamPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, FieldError{Field: field, Message: "path must start with /"})
		}
	}

	if cfg.MaxPortAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "backend.max_port_attempts",
			Message: "max port attempts must be at least 1",
		})
	}
	if cfg.Readiness.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "backend.readiness.max_attempts",
			Message: "max attempts must be at least 1",
		})
	}
	if cfg.Readiness.Interval < 0 {
		errs = append(errs, FieldError{
			Field:   "backend.readiness.interval",
			Message: "interval must be positive",
		})
	}
	if cfg.Readiness.AttemptTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "backend.readiness.attempt_timeout",
			Message: "attempt timeout must be positive",
		})
	}
	if cfg.Shutdown.SignalTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "backend.shutdown.signal_timeout",
			Message: "signal timeout must be positive",
		})
	}
	if cfg.Shutdown.GracePeriod < 0 {
		errs = append(errs, FieldError{
			Field:   "backend.shutdown.grace_period",
			Message: "grace period must be non-negative",
		})
	}

	if cfg.WatchdogSchedule != "" {
		if _, err := cron.ParseStandard(cfg.WatchdogSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "backend.watchdog_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}

	return errs
}

func validateBridge(cfg *BridgeConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "bridge.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "bridge.listen_address",
			Message: fmt.Sprintf("invalid listen address: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "bridge.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "bridge.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "bridge.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "bridge.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "bridge.cors.max_age", Message: "max age must be non-negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case "otlp":
			if cfg.Tracing.Endpoint == "" {
				errs = append(errs, FieldError{
					Field:   "telemetry.tracing.endpoint",
					Message: "tracing endpoint is required for the otlp exporter",
				})
			}
		case "stdout":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("invalid exporter %q: must be 'otlp' or 'stdout'", cfg.Tracing.Exporter),
			})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
