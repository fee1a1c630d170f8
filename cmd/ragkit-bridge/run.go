package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ragkit-hq/bridge/pkg/backend"
	"ragkit-hq/bridge/pkg/cli"
	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/server"
	"ragkit-hq/bridge/pkg/telemetry/logging"
	"ragkit-hq/bridge/pkg/telemetry/metrics"
	"ragkit-hq/bridge/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	mode          string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bridge and the supervised backend",
	Long: `Start the bridge server, launch the backend, and serve the UI until exit.

The bridge listens on the configured address right away. The backend is
launched in the background; calls answer 503 until it reports healthy.

Examples:
  # Start with default config
  ragkit-bridge run

  # Run the backend from a source checkout
  ragkit-bridge run --mode development

  # Override listen address
  ragkit-bridge run --listen 127.0.0.1:9000

  # Validate config without starting anything
  ragkit-bridge run --dry-run`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.mode, "mode", "", "override backend launch mode (development, production)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload the log level when the config file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the bridge")
}

// loadConfig reads cfgFile (a missing file means defaults), applies flag
// overrides, and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Bridge.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.mode != "" {
		cfg.Backend.Mode = runFlags.mode
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	config.SetConfig(cfg)
	return cfg, nil
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	defer logger.Close()
	log := logger.Slog()
	slog.SetDefault(log)

	printBanner(out, cfg, logger)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	supOpts := []backend.Option{
		backend.WithLogger(log),
		backend.WithMetrics(collector),
	}
	if cfg.Backend.Shutdown.Sweep {
		supOpts = append(supOpts, backend.WithSweeper(backend.SweepByName))
	}
	supervisor := backend.NewSupervisor(cfg.Backend, supOpts...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watchdog := backend.NewWatchdog(supervisor, cfg.Backend.WatchdogSchedule, log, collector)
	if err := watchdog.Start(ctx); err != nil {
		log.Warn("watchdog not started", "error", err)
	} else {
		defer watchdog.Stop()
	}

	if runFlags.watch {
		stop := watchConfig(ctx, logger, log)
		defer stop()
	}

	srv := server.New(cfg, supervisor,
		server.WithLogger(log),
		server.WithMetrics(collector),
		server.WithVersion(versionInfo()),
	)

	go func() {
		select {
		case <-srv.Listening():
			fmt.Fprintf(out, "✓ Bridge listening on %s\n", srv.Addr())
			fmt.Fprintf(out, "✓ Status endpoint: http://%s/status\n", srv.Addr())
			fmt.Fprintln(out, "\nPress Ctrl+C to stop")
		case <-ctx.Done():
		}
	}()

	if err := srv.Start(ctx); err != nil {
		log.Error("bridge stopped with error", "error", err)
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Bridge stopped")
	return nil
}

// watchConfig reloads the log level when the config file changes. Other
// settings need a restart. It returns a function that stops the watcher.
func watchConfig(ctx context.Context, logger *logging.Logger, log *slog.Logger) func() {
	if _, err := os.Stat(cfgFile); err != nil {
		log.Debug("config file not present, not watching", "path", cfgFile)
		return func() {}
	}

	w, err := config.NewWatcher(cfgFile, 0, log)
	if err != nil {
		log.Warn("config watcher not started", "error", err)
		return func() {}
	}

	go func() {
		err := w.Watch(ctx, func(cfg *config.Config) {
			if err := logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
				log.Warn("ignoring invalid log level", "level", cfg.Telemetry.Logging.Level, "error", err)
				return
			}
			log.Info("log level reloaded", "level", cfg.Telemetry.Logging.Level)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("config watcher stopped", "error", err)
		}
	}()

	return func() { _ = w.Stop() }
}

func printBanner(out io.Writer, cfg *config.Config, logger *logging.Logger) {
	fmt.Fprintf(out, "ragkit-bridge v%s\n", Version)
	fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintln(out, "✓ Configuration loaded")
	fmt.Fprintf(out, "✓ Backend mode: %s\n", cfg.Backend.Mode)
	if path := logger.Path(); path != "" {
		fmt.Fprintf(out, "✓ Logging to %s\n", path)
	}
}
