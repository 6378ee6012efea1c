// Package runtime provides the core Gateway struct and lifecycle management
// for the n8n gateway.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/tjfontaine/n8n-gateway/internal/core/ports"
	"github.com/tjfontaine/n8n-gateway/internal/frontdoor"
	n8nfrontdoor "github.com/tjfontaine/n8n-gateway/internal/frontdoor/n8n"
	"github.com/tjfontaine/n8n-gateway/internal/frontdoor/public"
	"github.com/tjfontaine/n8n-gateway/internal/n8n"
	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
	"github.com/tjfontaine/n8n-gateway/internal/server"
)

// ErrAlreadyStarted is returned by Start on a running gateway.
var ErrAlreadyStarted = errors.New("gateway already started")

// Gateway is the main entry point for running the n8n gateway.
// It owns the two n8n clients, the services built on them and the HTTP
// server exposing those services. Gateway can be embedded in larger
// applications or run standalone.
type Gateway struct {
	// Dependencies (injected via options)
	config     *config.Config
	logger     *slog.Logger
	httpClient *http.Client

	// Built once in New
	workflows ports.WorkflowService
	webhooks  ports.WebhookService
	handlers  []frontdoor.HandlerRegistration
	server    *server.Server

	// Lifecycle management
	mu       sync.Mutex
	listener net.Listener
	done     chan error
}

// New creates a new Gateway with the given options. A configuration is
// required (use WithFileConfig or WithConfig).
func New(opts ...Option) (*Gateway, error) {
	gw := &Gateway{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(gw); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if gw.config == nil {
		return nil, errors.New("config required (use WithFileConfig or WithConfig)")
	}

	apiClient := n8n.NewAPIClient(gw.config.N8N, gw.httpClient, gw.logger)
	webhookClient := n8n.NewWebhookClient(gw.config.N8N, gw.httpClient, gw.logger)
	gw.workflows = n8n.NewWorkflowGateway(apiClient, gw.logger)
	gw.webhooks = n8n.NewWebhookRelay(webhookClient, gw.logger)

	gw.handlers = append(gw.handlers,
		n8nfrontdoor.Registrations(n8nfrontdoor.NewHandler(gw.workflows, gw.webhooks, gw.logger))...)
	gw.handlers = append(gw.handlers,
		public.Registrations(public.NewHandler(gw.logger))...)

	gw.server = server.New(server.Options{
		Port:           gw.config.Server.Port,
		RequestTimeout: gw.config.Server.RequestTimeout,
		ServiceName:    gw.config.Telemetry.ServiceName,
	}, gw.logger)
	frontdoor.Mount(gw.server.Router, gw.handlers)

	for _, reg := range gw.handlers {
		gw.logger.Debug("registered handler",
			slog.String("method", reg.Method),
			slog.String("path", reg.Path))
	}

	gw.logger.Info("gateway configured",
		slog.String("n8n_base_url", gw.config.N8N.BaseURL),
		slog.String("webhook_base_url", gw.config.N8N.Webhook.BaseURL),
		slog.Int("routes", len(gw.handlers)))

	return gw, nil
}

// Handler returns the fully wired HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.server.Router
}

// Workflows returns the workflow service backing the /api/n8n routes.
func (g *Gateway) Workflows() ports.WorkflowService {
	return g.workflows
}

// Webhooks returns the webhook service backing the /api/n8n/webhook routes.
func (g *Gateway) Webhooks() ports.WebhookService {
	return g.webhooks
}

// Start binds the configured port and serves in the background. The
// returned error covers binding only; serve failures are reported by Wait.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.listener != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", g.config.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	g.listener = ln
	g.done = make(chan error, 1)

	go func(done chan<- error) {
		err := g.server.Serve(ln)
		if err != nil {
			g.logger.Error("server error", slog.String("error", err.Error()))
		}
		done <- err
		close(done)
	}(g.done)

	g.logger.Info("gateway started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Wait blocks until the server stops and returns its error, if any.
func (g *Gateway) Wait() error {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done == nil {
		return nil
	}
	return <-done
}

// Shutdown gracefully stops the gateway. A stopped Gateway cannot be
// started again.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	g.logger.Info("gateway shutdown complete")
	return nil
}
