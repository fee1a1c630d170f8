/*
Package cli provides command-line helpers for the ragkit-bridge command.

Output Formatting:

Command results are printed as text (indented JSON for backend results) or
as JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For cancellation on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Errors:

ConfigError and CommandError carry the failing field or command; ExitCode
maps them to the process exit status.
*/
package cli
