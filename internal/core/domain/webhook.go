package domain

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WebhookRequest describes a single call to an n8n webhook.
type WebhookRequest struct {
	// WebhookPath is appended verbatim to the webhook base URL.
	WebhookPath string            `json:"webhookPath" validate:"required"`
	Data        json.RawMessage   `json:"data,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Method      string            `json:"method,omitempty"`
}

// EffectiveMethod returns the upper-cased method, defaulting to POST.
func (r *WebhookRequest) EffectiveMethod() string {
	m := strings.TrimSpace(r.Method)
	if m == "" {
		return http.MethodPost
	}
	return strings.ToUpper(m)
}

// EffectiveBody returns the payload to send, an empty object when unset.
func (r *WebhookRequest) EffectiveBody() json.RawMessage {
	if IsNull(r.Data) {
		return json.RawMessage("{}")
	}
	return r.Data
}

// WebhookResponse is the normalized result of a webhook call.
type WebhookResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data,omitempty"`
	ExecutionID string          `json:"executionId,omitempty"`
}
