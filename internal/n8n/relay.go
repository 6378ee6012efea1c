package n8n

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
	"github.com/tjfontaine/n8n-gateway/internal/core/ports"
	"github.com/tjfontaine/n8n-gateway/internal/remote"
)

// testWebhookMessage is sent in the payload of every test call.
const testWebhookMessage = "This is a test webhook call"

// RelayOption configures a WebhookRelay.
type RelayOption func(*WebhookRelay)

// WithClock overrides the time source used for test payload timestamps.
func WithClock(now func() time.Time) RelayOption {
	return func(r *WebhookRelay) {
		r.now = now
	}
}

// WebhookRelay forwards calls to n8n webhook URLs.
type WebhookRelay struct {
	client Invoker
	logger *slog.Logger
	now    func() time.Time
}

// NewWebhookRelay creates a relay over the webhook client.
func NewWebhookRelay(client Invoker, logger *slog.Logger, opts ...RelayOption) *WebhookRelay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &WebhookRelay{client: client, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Trigger sends the request to its webhook path and normalizes the reply.
func (r *WebhookRelay) Trigger(ctx context.Context, req *domain.WebhookRequest) *domain.WebhookResponse {
	r.logger.InfoContext(ctx, "triggering webhook", slog.String("webhook_path", req.WebhookPath))

	raw, err := r.client.Invoke(ctx, remote.Call{
		Method:  req.EffectiveMethod(),
		Path:    req.WebhookPath,
		Headers: req.Headers,
		Body:    req.EffectiveBody(),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "error triggering webhook",
			slog.String("webhook_path", req.WebhookPath),
			slog.String("error", err.Error()))
		return &domain.WebhookResponse{
			Success: false,
			Message: "Failed to trigger webhook: " + err.Error(),
		}
	}

	resp := &domain.WebhookResponse{
		Success: true,
		Message: "Webhook triggered successfully",
		Data:    raw,
	}
	// n8n includes the execution id when the webhook responds after the
	// workflow has been started.
	if obj, err := domain.DecodeObject(raw); err == nil {
		resp.ExecutionID = obj.String("executionId")
	}
	return resp
}

// Test fires a synthetic POST at the webhook path.
func (r *WebhookRelay) Test(ctx context.Context, webhookPath string) *domain.WebhookResponse {
	r.logger.InfoContext(ctx, "testing webhook", slog.String("webhook_path", webhookPath))

	payload, _ := json.Marshal(struct {
		Test      bool   `json:"test"`
		Timestamp int64  `json:"timestamp"`
		Message   string `json:"message"`
	}{
		Test:      true,
		Timestamp: r.now().UnixMilli(),
		Message:   testWebhookMessage,
	})

	return r.Trigger(ctx, &domain.WebhookRequest{
		WebhookPath: webhookPath,
		Data:        payload,
		Method:      http.MethodPost,
	})
}

var _ ports.WebhookService = (*WebhookRelay)(nil)
