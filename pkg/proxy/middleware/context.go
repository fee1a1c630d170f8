package middleware

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// StartTimeKey stores the request start time for latency calculation.
// Request and session IDs live in the logging package so every component can
// read them.
const StartTimeKey contextKey = "start_time"
