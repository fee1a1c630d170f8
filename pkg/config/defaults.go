package config

import "time"

// Default values for configuration fields.
const (
	// Backend defaults
	DefaultBackendMode         = ModeProduction
	DefaultBackendHost         = "127.0.0.1"
	DefaultBackendExecutable   = "ragkit-backend"
	DefaultDevInterpreter      = "python"
	DefaultDevModule           = "ragkit.desktop.main"
	DefaultDevWorkingDir       = "../.."
	DefaultHealthPath          = "/health"
	DefaultShutdownPath        = "/shutdown"
	DefaultStreamPath          = "/api/chat/stream"
	DefaultMaxPortAttempts     = 64
	DefaultReadinessAttempts   = 30
	DefaultReadinessInterval   = 1 * time.Second
	DefaultReadinessTimeout    = 1 * time.Second
	DefaultShutdownSignalTO    = 3 * time.Second
	DefaultShutdownGracePeriod = 500 * time.Millisecond
	DefaultShutdownSweep       = true
	DefaultWatchdogSchedule    = "@every 30s"

	// Proxy defaults
	DefaultRequestTimeout  = 10 * time.Second
	DefaultMaxIdleConns    = 16
	DefaultIdleConnTimeout = 90 * time.Second

	// Bridge server defaults
	DefaultListenAddress   = "127.0.0.1:7878"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingDir          = "~/.ragkit/logs"
	DefaultLoggingFileName     = "ragkit-bridge.log"
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "ragkit"
	DefaultMetricsSubsystem    = "bridge"
	DefaultTracingEnabled      = false
	DefaultTracingExporter     = "otlp"
	DefaultTracingEndpoint     = "localhost:4317"
	DefaultTracingInsecure     = true
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "ragkit-bridge"
)

// Launch modes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// DefaultConfig returns a configuration with every field set to its default.
// Boolean fields whose default is true are only representable this way, so
// LoadConfig decodes YAML on top of this value rather than a zero Config.
func DefaultConfig() *Config {
	cfg := &Config{
		Backend: BackendConfig{
			Shutdown: ShutdownConfig{
				Sweep: DefaultShutdownSweep,
			},
			WatchdogSchedule: DefaultWatchdogSchedule,
		},
		Bridge: BridgeConfig{
			CORS: CORSConfig{
				Enabled: DefaultCORSEnabled,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Dir: DefaultLoggingDir,
			},
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Enabled:  DefaultTracingEnabled,
				Insecure: DefaultTracingInsecure,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field with its default.
func ApplyDefaults(cfg *Config) {
	applyBackendDefaults(&cfg.Backend)

	// Proxy defaults
	if cfg.Proxy.RequestTimeout == 0 {
		cfg.Proxy.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Proxy.MaxIdleConns == 0 {
		cfg.Proxy.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Proxy.IdleConnTimeout == 0 {
		cfg.Proxy.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Bridge defaults
	if cfg.Bridge.ListenAddress == "" {
		cfg.Bridge.ListenAddress = DefaultListenAddress
	}
	if cfg.Bridge.ReadTimeout == 0 {
		cfg.Bridge.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Bridge.IdleTimeout == 0 {
		cfg.Bridge.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Bridge.ShutdownTimeout == 0 {
		cfg.Bridge.ShutdownTimeout = DefaultShutdownTimeout
	}
	applyCORSDefaults(&cfg.Bridge.CORS)

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.FileName == "" {
		cfg.Telemetry.Logging.FileName = DefaultLoggingFileName
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

func applyBackendDefaults(b *BackendConfig) {
	if b.Mode == "" {
		b.Mode = DefaultBackendMode
	}
	if b.Host == "" {
		b.Host = DefaultBackendHost
	}
	if b.Executable == "" {
		b.Executable = DefaultBackendExecutable
	}
	if b.Dev.Interpreter == "" {
		b.Dev.Interpreter = DefaultDevInterpreter
	}
	if b.Dev.Module == "" {
		b.Dev.Module = DefaultDevModule
	}
	if b.Dev.WorkingDir == "" {
		b.Dev.WorkingDir = DefaultDevWorkingDir
	}
	if b.HealthPath == "" {
		b.HealthPath = DefaultHealthPath
	}
	if b.ShutdownPath == "" {
		b.ShutdownPath = DefaultShutdownPath
	}
	if b.StreamPath == "" {
		b.StreamPath = DefaultStreamPath
	}
	if b.MaxPortAttempts == 0 {
		b.MaxPortAttempts = DefaultMaxPortAttempts
	}
	if b.Readiness.MaxAttempts == 0 {
		b.Readiness.MaxAttempts = DefaultReadinessAttempts
	}
	if b.Readiness.Interval == 0 {
		b.Readiness.Interval = DefaultReadinessInterval
	}
	if b.Readiness.AttemptTimeout == 0 {
		b.Readiness.AttemptTimeout = DefaultReadinessTimeout
	}
	if b.Shutdown.SignalTimeout == 0 {
		b.Shutdown.SignalTimeout = DefaultShutdownSignalTO
	}
	if b.Shutdown.GracePeriod == 0 {
		b.Shutdown.GracePeriod = DefaultShutdownGracePeriod
	}
}

func applyCORSDefaults(c *CORSConfig) {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}
