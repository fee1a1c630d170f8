package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragkit-hq/bridge/pkg/backend"
	"ragkit-hq/bridge/pkg/cli"
	"ragkit-hq/bridge/pkg/commands"
	"ragkit-hq/bridge/pkg/config"
	"ragkit-hq/bridge/pkg/upstream"
)

// Flags shared by the commands that talk to an already running backend.
var clientFlags struct {
	port   int
	output string
}

// fixedPort serves a port given on the command line.
type fixedPort int

// Port implements upstream.PortSource.
func (p fixedPort) Port() (int, bool) {
	return int(p), p > 0
}

var callCmd = &cobra.Command{
	Use:   "call METHOD PATH [BODY]",
	Short: "Forward one JSON request to a running backend",
	Long: `Send a request to the backend on --port and print the JSON result.

Examples:
  ragkit-bridge call GET /api/llm/config --port 8100
  ragkit-bridge call PUT /api/llm/config '{"provider":"ollama"}' --port 8100`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCall,
}

var invokeCmd = &cobra.Command{
	Use:   "invoke COMMAND [ARGS]",
	Short: "Run a named backend command",
	Long: `Resolve a command from the catalog and send it to the backend on --port.
ARGS is a JSON object of named arguments.

Examples:
  ragkit-bridge invoke get_llm_config --port 8100
  ragkit-bridge invoke validate_folder '{"path":"/docs"}' --port 8100`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInvoke,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the named backend commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(clientFlags.output)
		if err != nil {
			return cli.NewCommandError("commands", err)
		}
		names := commands.Names()
		if format == cli.FormatJSON {
			return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), map[string][]string{"commands": names})
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return err
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream QUERY",
	Short: "Stream a chat answer from a running backend",
	Long: `Open a chat stream on the backend on --port and print tokens as they
arrive. Ctrl+C stops the stream.

Example:
  ragkit-bridge stream "summarize the release notes" --port 8100`,
	Args: cobra.ExactArgs(1),
	RunE: runStream,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Wait for a backend to report healthy",
	Long: `Poll the health endpoint of the backend on --port using the configured
readiness attempts and interval.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	for _, c := range []*cobra.Command{callCmd, invokeCmd, streamCmd, probeCmd} {
		c.Flags().IntVarP(&clientFlags.port, "port", "p", 0, "backend port (required)")
		_ = c.MarkFlagRequired("port")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{callCmd, invokeCmd, commandsCmd} {
		c.Flags().StringVarP(&clientFlags.output, "output", "o", "text", "output format: text, json")
	}
	rootCmd.AddCommand(commandsCmd)
}

// newClient builds a backend client for the port given on the command line.
func newClient() (*config.Config, *upstream.Client, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, upstream.NewClient(cfg, fixedPort(clientFlags.port), nil, nil), nil
}

func runCall(cmd *cobra.Command, args []string) error {
	var body json.RawMessage
	if len(args) == 3 {
		body = json.RawMessage(args[2])
		if !json.Valid(body) {
			return cli.NewCommandError("call", fmt.Errorf("body is not valid JSON"))
		}
	}

	_, client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Call(cmd.Context(), strings.ToUpper(args[0]), args[1], body)
	if err != nil {
		return cli.NewCommandError("call", err)
	}
	return printResult(cmd.OutOrStdout(), result)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	var cmdArgs json.RawMessage
	if len(args) == 2 {
		cmdArgs = json.RawMessage(args[1])
	}

	req, err := commands.Resolve(args[0], cmdArgs)
	if err != nil {
		return cli.NewCommandError("invoke", err)
	}

	_, client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Call(cmd.Context(), req.Method, req.Path, req.Body)
	if err != nil {
		return cli.NewCommandError("invoke", err)
	}
	return printResult(cmd.OutOrStdout(), result)
}

func printResult(w io.Writer, result json.RawMessage) error {
	format, err := cli.ParseOutputFormat(clientFlags.output)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(w, result)
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, client, err := newClient()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"query": args[0]})
	if err != nil {
		return err
	}

	bridge := upstream.NewBridge(client, cfg.Backend.StreamPath, nil, nil)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	cli.OnInterrupt(ctx, bridge.Stop)

	out := cmd.OutOrStdout()
	var final json.RawMessage
	outcome, err := bridge.Start(ctx, payload, upstream.SinkFuncs{
		Chunk: func(content string) { fmt.Fprint(out, content) },
		Done:  func(p json.RawMessage) { final = p },
	})
	if err != nil {
		return cli.NewCommandError("stream", err)
	}
	fmt.Fprintln(out)

	if verbose && final != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", outcome, final)
	}
	if outcome == upstream.OutcomeErrorReported {
		return cli.NewCommandError("stream", fmt.Errorf("backend reported an error: %s", final))
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	prober := backend.NewProber(cfg.Backend, nil, nil, nil, nil)
	if err := prober.Wait(cmd.Context(), clientFlags.port); err != nil {
		return cli.NewCommandError("probe", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Backend on port %d is healthy\n", clientFlags.port)
	return nil
}
