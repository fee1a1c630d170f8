package config

import "time"

// Config is the root configuration structure for the ragkit bridge.
type Config struct {
	// Backend describes how the supervised backend process is launched,
	// probed, and shut down.
	Backend BackendConfig `yaml:"backend"`

	// Proxy contains settings for requests forwarded to the backend.
	Proxy ProxyConfig `yaml:"proxy"`

	// Bridge contains the consumer-facing HTTP server configuration.
	Bridge BridgeConfig `yaml:"bridge"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BackendConfig describes the supervised backend process.
type BackendConfig struct {
	// Mode selects the launch strategy.
	// Options: "development" (interpreter + module from a source tree),
	// "production" (co-located packaged executable).
	// Default: "production"
	Mode string `yaml:"mode"`

	// Host is the loopback address used to reach the backend.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Executable is the process name of the packaged backend. It is also the
	// name used by the orphan sweep during shutdown.
	// Default: "ragkit-backend"
	Executable string `yaml:"executable"`

	// ExecutablePath overrides where the packaged backend is found. When empty
	// the executable is resolved next to the bridge binary.
	ExecutablePath string `yaml:"executable_path"`

	// Dev contains development-mode launch settings.
	Dev DevLaunchConfig `yaml:"dev"`

	// HealthPath is the readiness endpoint polled after launch.
	// Default: "/health"
	HealthPath string `yaml:"health_path"`

	// ShutdownPath receives the graceful shutdown signal.
	// Default: "/shutdown"
	ShutdownPath string `yaml:"shutdown_path"`

	// StreamPath is the SSE chat streaming endpoint.
	// Default: "/api/chat/stream"
	StreamPath string `yaml:"stream_path"`

	// MaxPortAttempts bounds how many times the allocator retries before
	// giving up with a resource exhaustion error.
	// Default: 64
	MaxPortAttempts int `yaml:"max_port_attempts"`

	// Readiness controls health polling after launch.
	Readiness ReadinessConfig `yaml:"readiness"`

	// Shutdown controls the teardown sequence.
	Shutdown ShutdownConfig `yaml:"shutdown"`

	// WatchdogSchedule is a cron expression for periodic liveness checks of
	// a running backend (e.g. "@every 30s"). Empty disables the watchdog.
	// Default: "@every 30s"
	WatchdogSchedule string `yaml:"watchdog_schedule"`
}

// DevLaunchConfig contains settings for development-mode launches.
type DevLaunchConfig struct {
	// Interpreter runs the backend module.
	// Default: "python"
	Interpreter string `yaml:"interpreter"`

	// Module is passed to the interpreter with -m.
	// Default: "ragkit.desktop.main"
	Module string `yaml:"module"`

	// WorkingDir is the source tree root, relative to the bridge's working
	// directory.
	// Default: "../.."
	WorkingDir string `yaml:"working_dir"`
}

// ReadinessConfig controls the readiness prober.
type ReadinessConfig struct {
	// MaxAttempts is the number of health checks before giving up.
	// Default: 30
	MaxAttempts int `yaml:"max_attempts"`

	// Interval is the wait between failed attempts.
	// Default: 1s
	Interval time.Duration `yaml:"interval"`

	// AttemptTimeout bounds a single health request.
	// Default: 1s
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
}

// ShutdownConfig controls the shutdown sequencer.
type ShutdownConfig struct {
	// SignalTimeout bounds the graceful shutdown request.
	// Default: 3s
	SignalTimeout time.Duration `yaml:"signal_timeout"`

	// GracePeriod is how long to wait after the graceful signal before the
	// process is killed.
	// Default: 500ms
	GracePeriod time.Duration `yaml:"grace_period"`

	// Sweep enables the OS-level kill-by-name step.
	// Default: true
	Sweep bool `yaml:"sweep"`
}

// ProxyConfig contains settings for forwarded requests.
type ProxyConfig struct {
	// RequestTimeout bounds an ordinary proxied call.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxIdleConns is the connection pool size toward the backend.
	// Default: 16
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout closes pooled connections after inactivity.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// BridgeConfig contains configuration for the consumer-facing HTTP server.
type BridgeConfig struct {
	// ListenAddress is the address the UI connects to.
	// Default: "127.0.0.1:7878"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response. Streaming
	// responses are long-lived, so zero (no timeout) is the default.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// when the bridge stops.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// Dir is the directory for daily rolling log files. Empty writes to stdout.
	// Default: "~/.ragkit/logs"
	Dir string `yaml:"dir"`

	// FileName is the base name of the log file inside Dir.
	// Default: "ragkit-bridge.log"
	FileName string `yaml:"file_name"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes all metric names.
	// Default: "ragkit"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name component.
	// Default: "bridge"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter.
	// Options: "otlp", "stdout"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS toward the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces sampled (0.0-1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the OpenTelemetry service.name.
	// Default: "ragkit-bridge"
	ServiceName string `yaml:"service_name"`
}
