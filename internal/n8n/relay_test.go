package n8n

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
	"github.com/tjfontaine/n8n-gateway/internal/remote"
)

// recordingInvoker captures the call instead of sending it.
type recordingInvoker struct {
	mu    sync.Mutex
	calls []remote.Call
	reply json.RawMessage
	err   error
}

func (r *recordingInvoker) Invoke(ctx context.Context, call remote.Call) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.reply, r.err
}

func (r *recordingInvoker) last(t *testing.T) remote.Call {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(r.calls))
	}
	return r.calls[0]
}

func bodyOf(t *testing.T, call remote.Call) string {
	t.Helper()
	b, err := json.Marshal(call.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(b)
}

func TestTrigger_Defaults(t *testing.T) {
	inv := &recordingInvoker{reply: json.RawMessage(`{"ok":true}`)}
	relay := NewWebhookRelay(inv, nil)

	got := relay.Trigger(context.Background(), &domain.WebhookRequest{WebhookPath: "/webhook/orders"})

	call := inv.last(t)
	if call.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", call.Method)
	}
	if call.Path != "/webhook/orders" {
		t.Errorf("Path = %s", call.Path)
	}
	if b := bodyOf(t, call); b != `{}` {
		t.Errorf("body = %s, want {}", b)
	}
	if len(call.Headers) != 0 {
		t.Errorf("Headers = %v, want none", call.Headers)
	}

	if !got.Success || got.Message != "Webhook triggered successfully" {
		t.Errorf("Trigger() = %+v", got)
	}
	if string(got.Data) != `{"ok":true}` {
		t.Errorf("Data = %s", got.Data)
	}
}

func TestTrigger_MethodHeadersAndBody(t *testing.T) {
	inv := &recordingInvoker{reply: json.RawMessage(`[1,2,3]`)}
	relay := NewWebhookRelay(inv, nil)

	headers := map[string]string{"x-signature": "abc", "X-Tenant-ID": "t1"}
	got := relay.Trigger(context.Background(), &domain.WebhookRequest{
		WebhookPath: "webhook-test/sync",
		Data:        json.RawMessage(`{"name":"n8n"}`),
		Headers:     headers,
		Method:      "put",
	})

	call := inv.last(t)
	if call.Method != http.MethodPut {
		t.Errorf("Method = %s, want PUT", call.Method)
	}
	if call.Path != "webhook-test/sync" {
		t.Errorf("Path = %s, want verbatim path", call.Path)
	}
	if call.Headers["x-signature"] != "abc" || call.Headers["X-Tenant-ID"] != "t1" || len(call.Headers) != 2 {
		t.Errorf("Headers = %v", call.Headers)
	}
	if b := bodyOf(t, call); b != `{"name":"n8n"}` {
		t.Errorf("body = %s", b)
	}
	if !got.Success || string(got.Data) != `[1,2,3]` {
		t.Errorf("Trigger() = %+v", got)
	}
	if got.ExecutionID != "" {
		t.Errorf("ExecutionID = %q, want empty for non-object body", got.ExecutionID)
	}
}

func TestTrigger_ExecutionIDFromBody(t *testing.T) {
	inv := &recordingInvoker{reply: json.RawMessage(`{"executionId":"981"}`)}
	got := NewWebhookRelay(inv, nil).Trigger(context.Background(), &domain.WebhookRequest{WebhookPath: "hook"})
	if got.ExecutionID != "981" {
		t.Errorf("ExecutionID = %q, want 981", got.ExecutionID)
	}
}

func TestTrigger_Failure(t *testing.T) {
	inv := &recordingInvoker{err: &remote.Error{
		Kind:       remote.KindStatus,
		Method:     http.MethodPost,
		URL:        "http://hooks.test/webhook/missing",
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
	}}
	got := NewWebhookRelay(inv, nil).Trigger(context.Background(), &domain.WebhookRequest{WebhookPath: "/webhook/missing"})

	if got.Success {
		t.Error("Success = true, want false")
	}
	if !strings.HasPrefix(got.Message, "Failed to trigger webhook: ") || !strings.Contains(got.Message, "404 Not Found") {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Data != nil {
		t.Errorf("Data = %s, want none", got.Data)
	}
}

func TestTest_DelegatesToTrigger(t *testing.T) {
	inv := &recordingInvoker{reply: json.RawMessage(`{"received":true}`)}
	fixed := time.UnixMilli(1700000000123)
	relay := NewWebhookRelay(inv, nil, WithClock(func() time.Time { return fixed }))

	got := relay.Test(context.Background(), "/webhook/abc")

	call := inv.last(t)
	if call.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", call.Method)
	}
	if call.Path != "/webhook/abc" {
		t.Errorf("Path = %s", call.Path)
	}
	if len(call.Headers) != 0 {
		t.Errorf("Headers = %v, want none", call.Headers)
	}

	var payload struct {
		Test      bool   `json:"test"`
		Timestamp int64  `json:"timestamp"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal([]byte(bodyOf(t, call)), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !payload.Test || payload.Message != "This is a test webhook call" || payload.Timestamp != 1700000000123 {
		t.Errorf("payload = %+v", payload)
	}
	if !got.Success {
		t.Errorf("Test() = %+v", got)
	}
}

func TestWebhookRelay_OverHTTP(t *testing.T) {
	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotHeader string
		gotCT     string
		gotAPIKey string
		gotBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotBody = r.Method, r.URL.Path, string(b)
		gotHeader = r.Header.Get("X-Custom")
		gotCT = r.Header.Get("Content-Type")
		gotAPIKey = r.Header.Get(APIKeyHeader)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Workflow was started"}`)
	}))
	defer srv.Close()

	client := NewWebhookClient(config.N8NConfig{
		APIKey:  "must-not-leak",
		Webhook: config.WebhookConfig{BaseURL: srv.URL + "/webhook"},
	}, srv.Client(), slog.Default())
	relay := NewWebhookRelay(client, nil)

	got := relay.Trigger(context.Background(), &domain.WebhookRequest{
		WebhookPath: "/lead-created",
		Headers:     map[string]string{"X-Custom": "yes"},
		Method:      "GET",
		Data:        json.RawMessage(`{"lead":1}`),
	})

	mu.Lock()
	defer mu.Unlock()
	if gotMethod != http.MethodGet || gotPath != "/webhook/lead-created" {
		t.Errorf("upstream call = %s %s", gotMethod, gotPath)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Custom = %q", gotHeader)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if gotAPIKey != "" {
		t.Errorf("webhook call carried API key %q", gotAPIKey)
	}
	if gotBody != `{"lead":1}` {
		t.Errorf("body = %q", gotBody)
	}
	if !got.Success || string(got.Data) != `{"message":"Workflow was started"}` {
		t.Errorf("Trigger() = %+v", got)
	}
}
