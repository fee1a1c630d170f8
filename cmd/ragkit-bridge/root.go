package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragkit-hq/bridge/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragkit-bridge",
	Short: "ragkit bridge - backend supervisor and UI proxy",
	Long: `ragkit-bridge runs the local RAG backend as a supervised process and
exposes it to the desktop UI.

It provides:
  - Port allocation and launch of the backend (development or packaged)
  - Readiness probing and a periodic liveness watchdog
  - JSON request forwarding and named backend commands
  - Chat token streaming with cooperative stop
  - An ordered shutdown: graceful signal, kill, orphan sweep`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "bridge.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
