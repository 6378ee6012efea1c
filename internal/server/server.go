// Package server provides the HTTP router and the middleware chain shared by
// every frontdoor.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the server.
type Options struct {
	Port int
	// RequestTimeout cancels the request context after the given duration.
	// Zero leaves requests unbounded.
	RequestTimeout time.Duration
	// ServiceName labels inbound spans.
	ServiceName string
}

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
	http   *http.Server
}

func New(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "n8n-gateway"
	}

	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	if opts.RequestTimeout > 0 {
		r.Use(TimeoutMiddleware(opts.RequestTimeout))
	}
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName)
	})

	return &Server{
		Router: r,
		Port:   opts.Port,
		logger: logger,
		http: &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens on the configured port and blocks until the server stops.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called. A Server cannot
// be restarted after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
