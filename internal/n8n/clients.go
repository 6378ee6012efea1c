package n8n

import (
	"log/slog"
	"net/http"

	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
	"github.com/tjfontaine/n8n-gateway/internal/remote"
)

// APIKeyHeader carries the static management API credential.
const APIKeyHeader = "X-N8N-API-KEY"

const contentTypeJSON = "application/json"

// NewAPIClient builds the management API client from configuration.
func NewAPIClient(cfg config.N8NConfig, httpClient *http.Client, logger *slog.Logger) *remote.Client {
	opts := []remote.Option{
		remote.WithHeader(APIKeyHeader, cfg.APIKey),
		remote.WithHeader("Content-Type", contentTypeJSON),
		remote.WithLogger(logger),
	}
	if httpClient != nil {
		opts = append(opts, remote.WithHTTPClient(httpClient))
	}
	return remote.New(cfg.BaseURL, opts...)
}

// NewWebhookClient builds the webhook client from configuration. It carries
// no credential and lets every verb send a body.
func NewWebhookClient(cfg config.N8NConfig, httpClient *http.Client, logger *slog.Logger) *remote.Client {
	opts := []remote.Option{
		remote.WithHeader("Content-Type", contentTypeJSON),
		remote.WithGetPayload(),
		remote.WithLogger(logger),
	}
	if httpClient != nil {
		opts = append(opts, remote.WithHTTPClient(httpClient))
	}
	return remote.New(cfg.Webhook.BaseURL, opts...)
}
