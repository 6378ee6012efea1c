package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds how long a request context stays alive.
// Handlers observe the deadline through the context; upstream calls made with
// that context are cancelled when it expires.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
