package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
)

// Option is a functional option for configuring a Gateway.
type Option func(*Gateway) error

// WithFileConfig loads configuration from a YAML file with GATEWAY_
// environment overrides. A missing file falls back to environment and
// defaults.
func WithFileConfig(path string) Option {
	return func(g *Gateway) error {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		g.config = cfg
		return nil
	}
}

// WithConfig uses an already built configuration. It is validated the same
// way a loaded file is.
func WithConfig(cfg *config.Config) Option {
	return func(g *Gateway) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		g.config = cfg
		return nil
	}
}

// WithLogger sets the logger shared by the gateway, its clients and its
// middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		g.logger = logger
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for both n8n clients. The
// default client is instrumented with OpenTelemetry.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) error {
		g.httpClient = client
		return nil
	}
}
