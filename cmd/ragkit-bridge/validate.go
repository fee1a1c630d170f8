package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragkit-hq/bridge/pkg/cli"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and defaults
applied, validate it, and print the effective settings.

Examples:
  ragkit-bridge validate --config bridge.yaml
  ragkit-bridge validate --format json`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(out, cfg)
	}

	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintf(out, "  Listen address: %s\n", cfg.Bridge.ListenAddress)
	fmt.Fprintf(out, "  Backend mode:   %s\n", cfg.Backend.Mode)
	fmt.Fprintf(out, "  Health path:    %s\n", cfg.Backend.HealthPath)
	fmt.Fprintf(out, "  Watchdog:       %s\n", valueOr(cfg.Backend.WatchdogSchedule, "disabled"))
	fmt.Fprintf(out, "  Metrics:        %t\n", cfg.Telemetry.Metrics.Enabled)
	fmt.Fprintf(out, "  Tracing:        %t\n", cfg.Telemetry.Tracing.Enabled)
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
