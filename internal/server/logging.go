package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// logFieldsKey identifies request-scoped logging fields.
type logFieldsKey struct{}

// logFields is the mutable bag handlers enrich through AddLogField.
type logFields struct {
	mu     sync.Mutex
	values map[string]string
}

// LoggingMiddleware emits a "request started" and a "request completed" line
// per request. The completion line carries the status, duration, matched
// route pattern and any fields added with AddLogField. 5xx responses are
// logged at error level, 4xx at warn.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			fields := &logFields{values: make(map[string]string)}
			ctx := context.WithValue(r.Context(), logFieldsKey{}, fields)

			wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			requestID := GetRequestID(r.Context())

			logger.InfoContext(ctx, "request started",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Int("bytes", wrapped.bytes),
				slog.Duration("duration", time.Since(start)),
			}
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}

			fields.mu.Lock()
			for k, v := range fields.values {
				attrs = append(attrs, slog.String(k, v))
			}
			fields.mu.Unlock()

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case wrapped.statusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "request completed", attrs...)
		})
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func (rw *loggingResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Flush forwards Flush to the underlying ResponseWriter if it supports http.Flusher.
func (rw *loggingResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AddLogField attaches a key/value to the request-scoped log fields so
// LoggingMiddleware can emit it. No-op if the middleware isn't present or
// value is empty.
func AddLogField(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	if fields, ok := ctx.Value(logFieldsKey{}).(*logFields); ok {
		fields.mu.Lock()
		fields.values[key] = value
		fields.mu.Unlock()
	}
}

// AddError records err under the "error" log field. No-op for nil errors.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	AddLogField(ctx, "error", err.Error())
}
