// Package n8n exposes the workflow gateway and the webhook relay under
// /api/n8n. Handlers reject malformed input with 400; everything else is
// answered with 200 because the core folds upstream failures into the
// payload.
package n8n

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
	"github.com/tjfontaine/n8n-gateway/internal/core/ports"
	"github.com/tjfontaine/n8n-gateway/internal/frontdoor"
	"github.com/tjfontaine/n8n-gateway/internal/server"
)

// BasePath is the prefix shared by every route in this package.
const BasePath = "/api/n8n"

type Handler struct {
	workflows ports.WorkflowService
	webhooks  ports.WebhookService
	logger    *slog.Logger
}

func NewHandler(workflows ports.WorkflowService, webhooks ports.WebhookService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{workflows: workflows, webhooks: webhooks, logger: logger}
}

// Registrations returns the routes served by h.
func Registrations(h *Handler) []frontdoor.HandlerRegistration {
	return []frontdoor.HandlerRegistration{
		{Path: BasePath + "/workflows", Method: http.MethodGet, Handler: h.HandleListWorkflows},
		{Path: BasePath + "/workflows/execute", Method: http.MethodPost, Handler: h.HandleExecuteWorkflow},
		{Path: BasePath + "/workflows/{workflowId}", Method: http.MethodGet, Handler: h.HandleGetWorkflow},
		{Path: BasePath + "/workflows/{workflowId}/activate", Method: http.MethodPut, Handler: h.HandleActivateWorkflow},
		{Path: BasePath + "/workflows/{workflowId}/deactivate", Method: http.MethodPut, Handler: h.HandleDeactivateWorkflow},
		{Path: BasePath + "/executions/{executionId}", Method: http.MethodGet, Handler: h.HandleGetExecution},
		{Path: BasePath + "/webhook/trigger", Method: http.MethodPost, Handler: h.HandleTriggerWebhook},
		{Path: BasePath + "/webhook/test/*", Method: http.MethodGet, Handler: h.HandleTestWebhook},
		{Path: BasePath + "/webhook/simple/*", Method: http.MethodPost, Handler: h.HandleSimpleWebhook},
	}
}

func (h *Handler) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows := h.workflows.ListWorkflows(r.Context())
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Workflows retrieved successfully", workflows))
}

func (h *Handler) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowId")
	server.AddLogField(r.Context(), "workflow_id", id)

	workflow := h.workflows.GetWorkflow(r.Context(), id)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Workflow retrieved successfully", workflow))
}

func (h *Handler) HandleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkflowExecutionRequest
	if err := frontdoor.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, "execute workflow", err)
		return
	}
	if err := frontdoor.Validate(&req); err != nil {
		h.badRequest(w, r, "execute workflow", err)
		return
	}
	server.AddLogField(r.Context(), "workflow_id", req.WorkflowID)

	resp := h.workflows.ExecuteWorkflow(r.Context(), &req)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Workflow execution initiated", *resp))
}

func (h *Handler) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "executionId")
	server.AddLogField(r.Context(), "execution_id", id)

	status := h.workflows.GetExecutionStatus(r.Context(), id)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Execution status retrieved", status))
}

func (h *Handler) HandleActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true, "Workflow activated")
}

func (h *Handler) HandleDeactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false, "Workflow deactivated")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, active bool, message string) {
	id := chi.URLParam(r, "workflowId")
	server.AddLogField(r.Context(), "workflow_id", id)

	result := h.workflows.ToggleWorkflow(r.Context(), id, active)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success(message, result))
}

func (h *Handler) HandleTriggerWebhook(w http.ResponseWriter, r *http.Request) {
	var req domain.WebhookRequest
	if err := frontdoor.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, "trigger webhook", err)
		return
	}
	if err := frontdoor.Validate(&req); err != nil {
		h.badRequest(w, r, "trigger webhook", err)
		return
	}
	server.AddLogField(r.Context(), "webhook_path", req.WebhookPath)

	resp := h.webhooks.Trigger(r.Context(), &req)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Webhook triggered", *resp))
}

func (h *Handler) HandleTestWebhook(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	server.AddLogField(r.Context(), "webhook_path", path)

	resp := h.webhooks.Test(r.Context(), path)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Webhook test completed", *resp))
}

// HandleSimpleWebhook triggers the webhook named by the URL with the request
// body as payload. The body is optional but must be a JSON object when sent.
func (h *Handler) HandleSimpleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := frontdoor.ReadBody(w, r)
	if err != nil {
		h.badRequest(w, r, "trigger webhook", err)
		return
	}
	var data json.RawMessage
	if body != nil {
		if _, err := domain.DecodeObject(body); err != nil {
			h.badRequest(w, r, "trigger webhook", err)
			return
		}
		data = body
	}

	req := &domain.WebhookRequest{
		WebhookPath: wildcardPath(r),
		Data:        data,
		Method:      http.MethodPost,
	}
	server.AddLogField(r.Context(), "webhook_path", req.WebhookPath)

	resp := h.webhooks.Trigger(r.Context(), req)
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Webhook triggered", *resp))
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, verb string, err error) {
	server.AddError(r.Context(), err)
	h.logger.WarnContext(r.Context(), "rejected request",
		slog.String("request_id", server.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	frontdoor.WriteJSON(w, http.StatusBadRequest, domain.Failure[any]("Failed to "+verb+": "+err.Error()))
}

// wildcardPath returns the trailing route segment with a leading slash, the
// form appended to the webhook base URL.
func wildcardPath(r *http.Request) string {
	return "/" + chi.URLParam(r, "*")
}
