package ports

import (
	"context"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
)

// WorkflowService forwards workflow management calls to n8n.
// Implementations never return errors; upstream failures are folded into
// the returned values.
type WorkflowService interface {
	ListWorkflows(ctx context.Context) []domain.Object
	GetWorkflow(ctx context.Context, id string) domain.Object
	ExecuteWorkflow(ctx context.Context, req *domain.WorkflowExecutionRequest) *domain.WorkflowExecutionResponse
	GetExecutionStatus(ctx context.Context, id string) domain.Object
	ToggleWorkflow(ctx context.Context, id string, active bool) domain.Object
}

// WebhookService relays calls to n8n webhook URLs.
type WebhookService interface {
	Trigger(ctx context.Context, req *domain.WebhookRequest) *domain.WebhookResponse
	Test(ctx context.Context, webhookPath string) *domain.WebhookResponse
}
