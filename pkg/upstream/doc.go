// Package upstream talks to the supervised backend over loopback HTTP.
//
// Client forwards one-shot calls: a method, a path, and an optional JSON body
// go out unchanged, and a 2xx JSON body comes back verbatim. Failures are
// classified as NotReady (no backend port yet), Transport (the request never
// completed), Upstream (non-2xx status), or Parse (2xx with a body that is not
// JSON). Nothing is retried at this layer.
//
// Bridge runs the chat stream: it posts a query to the backend's SSE endpoint,
// decodes the response incrementally, and delivers token text and exactly one
// terminal payload to a Sink. A single cancellation flag is shared by every
// session of a Bridge, so only one stream may be active at a time.
package upstream
