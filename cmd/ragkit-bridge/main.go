// ragkit-bridge supervises the local RAG backend and exposes it to the
// desktop UI.
//
// It launches the backend on a free loopback port, waits for it to report
// healthy, and serves a bridge HTTP API that forwards JSON calls and relays
// chat token streams. On exit the backend is signalled, killed, and swept.
//
// Usage:
//
//	# Start the bridge with default configuration
//	ragkit-bridge run
//
//	# Start with a configuration file
//	ragkit-bridge run --config ~/.ragkit/bridge.yaml
//
//	# Call a named backend command against a running backend
//	ragkit-bridge invoke get_llm_config --port 8100
//
//	# Stream a chat answer
//	ragkit-bridge stream "what changed in v2?" --port 8100
package main

func main() {
	Execute()
}
