// Package logging builds the bridge's structured logger.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text output, to stdout or a daily rolling file
//   - A level that can be changed at runtime (configuration reload)
//   - Context-aware records carrying request and stream session IDs
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.Slog().InfoContext(ctx, "request proxied") // includes request_id
//
// # Rolling files
//
// When a log directory is configured, records go to
// <dir>/<file_name>.<YYYY-MM-DD>. A new file is opened on the first write
// after the local date changes.
package logging
