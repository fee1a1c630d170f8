package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"ragkit-hq/bridge/pkg/commands"
	"ragkit-hq/bridge/pkg/proxy"
	"ragkit-hq/bridge/pkg/proxy/middleware"
	"ragkit-hq/bridge/pkg/proxy/types"
)

// requirePost answers 405 for anything but POST and reports whether the
// request may proceed.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	errResp := types.NewErrorResponse(
		http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
		"method_not_allowed",
	)
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
	return false
}

// writeFailure maps err and writes it, logging at warn level.
func writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.WarnContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	if err := proxy.WriteError(w, err); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}

// writeResult wraps a backend result in {"result": ...}.
func writeResult(w http.ResponseWriter, r *http.Request, resp types.CallResponse) {
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// CallHandler serves POST /bridge/call, the generic forward call.
type CallHandler struct {
	Caller Caller
}

// NewCallHandler creates a forward-call handler.
func NewCallHandler(c Caller) *CallHandler {
	return &CallHandler{Caller: c}
}

// ServeHTTP implements http.Handler.
func (h *CallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	req, err := proxy.ParseCallRequest(r)
	if err != nil {
		writeFailure(w, r, "invalid call request", err)
		return
	}

	result, err := h.Caller.Call(r.Context(), req.Method, req.Path, req.Body)
	if err != nil {
		writeFailure(w, r, "forward call failed", err)
		return
	}

	writeResult(w, r, types.CallResponse{Result: result})
}

// CommandHandler serves POST /bridge/commands/{name}. The request body holds
// the command's JSON arguments.
type CommandHandler struct {
	Caller Caller
}

// NewCommandHandler creates a command handler.
func NewCommandHandler(c Caller) *CommandHandler {
	return &CommandHandler{Caller: c}
}

// ServeHTTP implements http.Handler.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	args, err := proxy.ParseJSONBody(r, true)
	if err != nil {
		writeFailure(w, r, "invalid command arguments", err)
		return
	}

	name := r.PathValue("name")
	req, err := commands.Resolve(name, args)
	if err != nil {
		writeFailure(w, r, "command not resolved", err)
		return
	}

	slog.DebugContext(r.Context(), "invoking command",
		"command", name,
		"method", req.Method,
		"path", req.Path,
	)

	result, err := h.Caller.Call(r.Context(), req.Method, req.Path, req.Body)
	if err != nil {
		writeFailure(w, r, "command failed", err)
		return
	}

	writeResult(w, r, types.CallResponse{Result: result})
}

// CommandListHandler serves GET /bridge/commands with the catalog names.
func CommandListHandler(w http.ResponseWriter, r *http.Request) {
	if err := proxy.WriteJSONResponse(w, http.StatusOK, map[string][]string{"commands": commands.Names()}); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
