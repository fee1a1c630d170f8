// Package handlers provides the HTTP handlers of the bridge's consumer-facing
// surface.
//
//   - CallHandler: POST /bridge/call, a generic forward call
//   - CommandHandler: POST /bridge/commands/{name}, a named catalog command
//   - StreamHandler: POST /bridge/chat/stream, a chat stream relayed as
//     server-sent events
//   - StopHandler: POST /bridge/chat/stream/stop
//   - ExitHandler: POST /bridge/exit
//
// Handlers depend on the small Caller and Streamer interfaces so they can be
// tested against fakes; in production they are *upstream.Client and
// *upstream.Bridge.
//
// Successful calls answer {"result": <backend JSON>}. Failures answer
// {"error": "<message>", "code": "..."} with the status chosen by
// proxy.HandleError.
package handlers
