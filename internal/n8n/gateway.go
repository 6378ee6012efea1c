package n8n

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
	"github.com/tjfontaine/n8n-gateway/internal/core/ports"
	"github.com/tjfontaine/n8n-gateway/internal/remote"
)

const (
	workflowsPath       = "/api/v1/workflows"
	workflowPath        = "/api/v1/workflows/{id}"
	executeWorkflowPath = "/api/v1/workflows/{id}/execute"
	executionPath       = "/api/v1/executions/{id}"
)

// Invoker performs a single upstream call.
type Invoker interface {
	Invoke(ctx context.Context, call remote.Call) (json.RawMessage, error)
}

// WorkflowGateway forwards workflow management operations to the n8n API.
type WorkflowGateway struct {
	client Invoker
	logger *slog.Logger
}

// NewWorkflowGateway creates a gateway over the management API client.
func NewWorkflowGateway(client Invoker, logger *slog.Logger) *WorkflowGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowGateway{client: client, logger: logger}
}

// ListWorkflows returns the workflows in the remote "data" array. Any
// failure, or a "data" member that is not an array of objects, yields an
// empty list.
func (g *WorkflowGateway) ListWorkflows(ctx context.Context) []domain.Object {
	g.logger.InfoContext(ctx, "fetching all workflows")

	obj, err := g.invokeObject(ctx, remote.Call{Method: http.MethodGet, Path: workflowsPath})
	if err != nil {
		g.logger.ErrorContext(ctx, "error fetching workflows", slog.String("error", err.Error()))
		return []domain.Object{}
	}

	data := obj["data"]
	if !domain.IsKind(data, '[') {
		return []domain.Object{}
	}
	var workflows []domain.Object
	if err := json.Unmarshal(data, &workflows); err != nil {
		g.logger.WarnContext(ctx, "workflow list has unexpected shape", slog.String("error", err.Error()))
		return []domain.Object{}
	}
	if workflows == nil {
		workflows = []domain.Object{}
	}
	return workflows
}

// GetWorkflow returns a single workflow definition.
func (g *WorkflowGateway) GetWorkflow(ctx context.Context, id string) domain.Object {
	g.logger.InfoContext(ctx, "fetching workflow", slog.String("workflow_id", id))

	obj, err := g.invokeObject(ctx, remote.Call{
		Method:     http.MethodGet,
		Path:       workflowPath,
		PathParams: map[string]string{"id": id},
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "error fetching workflow",
			slog.String("workflow_id", id),
			slog.String("error", err.Error()))
		return domain.ErrorObject(err.Error())
	}
	return obj
}

// ExecuteWorkflow starts a workflow run with the request's input data.
func (g *WorkflowGateway) ExecuteWorkflow(ctx context.Context, req *domain.WorkflowExecutionRequest) *domain.WorkflowExecutionResponse {
	g.logger.InfoContext(ctx, "executing workflow", slog.String("workflow_id", req.WorkflowID))

	input := req.InputData
	if input == nil {
		input = domain.Object{}
	}

	raw, err := g.client.Invoke(ctx, remote.Call{
		Method:     http.MethodPost,
		Path:       executeWorkflowPath,
		PathParams: map[string]string{"id": req.WorkflowID},
		Body:       input,
	})
	var obj domain.Object
	if err == nil {
		obj, err = domain.DecodeObject(raw)
	}
	if err != nil {
		g.logger.ErrorContext(ctx, "error executing workflow",
			slog.String("workflow_id", req.WorkflowID),
			slog.String("error", err.Error()))
		return &domain.WorkflowExecutionResponse{
			Status:  domain.ExecutionFailed,
			Message: "Failed to execute workflow: " + err.Error(),
		}
	}

	return &domain.WorkflowExecutionResponse{
		ExecutionID: obj.String("executionId"),
		Status:      domain.ExecutionStarted,
		Data:        raw,
		Message:     "Workflow execution started successfully",
	}
}

// GetExecutionStatus returns the remote record for an execution.
func (g *WorkflowGateway) GetExecutionStatus(ctx context.Context, id string) domain.Object {
	g.logger.InfoContext(ctx, "fetching execution status", slog.String("execution_id", id))

	obj, err := g.invokeObject(ctx, remote.Call{
		Method:     http.MethodGet,
		Path:       executionPath,
		PathParams: map[string]string{"id": id},
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "error fetching execution status",
			slog.String("execution_id", id),
			slog.String("error", err.Error()))
		return domain.ErrorObject(err.Error())
	}
	return obj
}

// ToggleWorkflow activates or deactivates a workflow.
func (g *WorkflowGateway) ToggleWorkflow(ctx context.Context, id string, active bool) domain.Object {
	state := "inactive"
	if active {
		state = "active"
	}
	g.logger.InfoContext(ctx, "toggling workflow", slog.String("workflow_id", id), slog.String("state", state))

	obj, err := g.invokeObject(ctx, remote.Call{
		Method:     http.MethodPatch,
		Path:       workflowPath,
		PathParams: map[string]string{"id": id},
		Body:       map[string]bool{"active": active},
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "error toggling workflow",
			slog.String("workflow_id", id),
			slog.String("error", err.Error()))
		return domain.ErrorObject(err.Error())
	}
	return obj
}

func (g *WorkflowGateway) invokeObject(ctx context.Context, call remote.Call) (domain.Object, error) {
	raw, err := g.client.Invoke(ctx, call)
	if err != nil {
		return nil, err
	}
	return domain.DecodeObject(raw)
}

var _ ports.WorkflowService = (*WorkflowGateway)(nil)
