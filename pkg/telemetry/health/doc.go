// Package health provides the bridge's health endpoints.
//
// # Endpoints
//
//   - /health: liveness, the bridge process is serving
//   - /ready: readiness, every registered check passes
//   - /status: the supervised backend's lifecycle phase, port, and pid
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("backend", health.BackendCheck(supervisor))
//	health.Register(mux, checker, supervisor, health.VersionInfo{Version: "1.0.0"})
//
// Checks run concurrently, each bounded by the checker's timeout. A check
// that ignores its context is still reported unhealthy once the timeout
// passes.
package health
