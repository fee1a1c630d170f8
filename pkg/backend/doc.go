// Package backend supervises the local backend process that the bridge
// proxies to.
//
// A Supervisor drives the lifecycle: the PortAllocator picks a free loopback
// port, the Launcher spawns the backend with --port, the resulting handle is
// recorded in the Store before readiness is known, and the Prober polls the
// health endpoint until the backend answers. The Sequencer tears everything
// down in three unconditional steps: graceful signal, forced kill, and a
// kill-by-name sweep for orphans of earlier runs.
//
// Exactly one backend is supervised per run. Nothing here restarts a backend
// that fails; the Watchdog only reports on it.
package backend
