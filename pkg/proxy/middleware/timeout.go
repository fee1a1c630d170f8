package middleware

import (
	"context"
	"net/http"
	"slices"
	"time"
)

// TimeoutMiddleware sets a deadline on the request context. Handlers observe
// it through their backend calls, which fail with a deadline error that maps
// to 504 Gateway Timeout.
//
// Requests whose path equals one of exempt run without a deadline; event
// streams use this. Sub-paths are not exempt.
//
// Example usage:
//
//	handler = TimeoutMiddleware(30*time.Second, "/bridge/chat/stream")(handler)
func TimeoutMiddleware(timeout time.Duration, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(exempt, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
