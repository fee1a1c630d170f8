// Package server runs the bridge: the loopback HTTP server the UI talks to
// and the backend supervisor behind it.
//
// # Lifecycle
//
// Start binds the listener, launches the backend in the background and then
// waits for one of:
//   - the context being cancelled
//   - SIGINT or SIGTERM
//   - POST /bridge/exit from the UI
//
// Each leads to Shutdown, which stops any chat stream, runs the backend
// shutdown sequence (graceful request, kill, sweep) and finally drains the
// HTTP server. A backend that fails to start does not stop the server; calls
// answer 503 and /status reports the failure.
//
// # Routes
//
//	POST /bridge/call               forward one call to the backend
//	GET  /bridge/commands           list the command catalog
//	POST /bridge/commands/{name}    run a catalog command
//	POST /bridge/chat/stream        relay a chat stream as server-sent events
//	POST /bridge/chat/stream/stop   stop the active stream
//	POST /bridge/exit               exit the application
//	GET  /health /ready /status /version
//	GET  /metrics                   when metrics are enabled
//
// # Basic Usage
//
//	cfg, _ := config.LoadOrDefault(path)
//	sup := backend.NewSupervisor(cfg.Backend)
//	srv := server.New(cfg, sup, server.WithMetrics(collector))
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
