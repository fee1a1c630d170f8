package handlers

import (
	"context"
	"encoding/json"

	"ragkit-hq/bridge/pkg/upstream"
)

// Caller forwards one request to the backend. *upstream.Client implements it.
type Caller interface {
	Call(ctx context.Context, method, path string, body json.RawMessage) (json.RawMessage, error)
}

// Streamer runs chat stream sessions. *upstream.Bridge implements it.
type Streamer interface {
	Start(ctx context.Context, payload json.RawMessage, sink upstream.Sink) (upstream.Outcome, error)
	Stop()
}
