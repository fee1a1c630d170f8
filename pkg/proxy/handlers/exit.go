package handlers

import (
	"log/slog"
	"net/http"
)

// ExitHandler serves POST /bridge/exit, the UI's application-exit signal.
// It answers 202 and then calls Exit, which must not block; the server runs
// the shutdown sequence from its own goroutine.
type ExitHandler struct {
	Exit func()
}

// NewExitHandler creates an exit handler.
func NewExitHandler(exit func()) *ExitHandler {
	return &ExitHandler{Exit: exit}
}

// ServeHTTP implements http.Handler.
func (h *ExitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	slog.InfoContext(r.Context(), "application exit requested")
	w.WriteHeader(http.StatusAccepted)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	if h.Exit != nil {
		h.Exit()
	}
}
