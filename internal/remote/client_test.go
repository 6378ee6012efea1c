package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureTransport records the outgoing request and answers with a canned body.
type captureTransport struct {
	req    *http.Request
	body   string
	status int
	reply  string
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.req = req
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		c.body = string(b)
	}
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(c.reply)),
		Request:    req,
	}, nil
}

func TestInvoke_Success(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-N8N-API-KEY")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"wf-42","active":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithHeader("X-N8N-API-KEY", "secret"), WithHTTPClient(srv.Client()))

	got, err := c.Invoke(context.Background(), Call{
		Method:     http.MethodPatch,
		Path:       "/api/v1/workflows/{id}",
		PathParams: map[string]string{"id": "wf-42"},
		Body:       map[string]bool{"active": true},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", gotMethod)
	}
	if gotPath != "/api/v1/workflows/wf-42" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("X-N8N-API-KEY = %q, want secret", gotKey)
	}
	if gotBody != `{"active":true}` {
		t.Errorf("body = %s", gotBody)
	}
	if string(got) != `{"id":"wf-42","active":true}` {
		t.Errorf("Invoke() = %s", got)
	}
}

func TestInvoke_PathParamsAreEscaped(t *testing.T) {
	transport := &captureTransport{reply: `{}`}
	c := New("http://n8n.test", WithHTTPClient(&http.Client{Transport: transport}))

	_, err := c.Invoke(context.Background(), Call{
		Method:     http.MethodGet,
		Path:       "/api/v1/executions/{id}",
		PathParams: map[string]string{"id": "a/b c"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := transport.req.URL.EscapedPath(); got != "/api/v1/executions/a%2Fb%20c" {
		t.Errorf("escaped path = %s", got)
	}
}

func TestInvoke_HeadersVerbatim(t *testing.T) {
	transport := &captureTransport{reply: `{"ok":true}`}
	c := New("http://hooks.test", WithHTTPClient(&http.Client{Transport: transport}))

	_, err := c.Invoke(context.Background(), Call{
		Method:  http.MethodPost,
		Path:    "webhook/abc",
		Headers: map[string]string{"x-lower-case": "v1", "X-MiXeD": "v2"},
		Body:    json.RawMessage(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if v, ok := transport.req.Header["x-lower-case"]; !ok || v[0] != "v1" {
		t.Errorf("expected verbatim x-lower-case header, got %v", transport.req.Header)
	}
	if v, ok := transport.req.Header["X-MiXeD"]; !ok || v[0] != "v2" {
		t.Errorf("expected verbatim X-MiXeD header, got %v", transport.req.Header)
	}
	if transport.req.URL.Path != "/webhook/abc" {
		t.Errorf("path = %s, want /webhook/abc", transport.req.URL.Path)
	}
	if transport.body != `{"a":1}` {
		t.Errorf("body = %s", transport.body)
	}
}

func TestInvoke_HeaderOverridesDefaultAnyCase(t *testing.T) {
	transport := &captureTransport{reply: `{}`}
	c := New("http://hooks.test",
		WithHeader("Content-Type", "application/json"),
		WithHTTPClient(&http.Client{Transport: transport}),
	)

	_, err := c.Invoke(context.Background(), Call{
		Method:  http.MethodPost,
		Path:    "/webhook/plain",
		Headers: map[string]string{"content-type": "text/plain"},
		Body:    json.RawMessage(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if got := transport.req.Header.Values("Content-Type"); len(got) != 1 || got[0] != "text/plain" {
		t.Errorf("Content-Type values = %v, want [text/plain]", got)
	}
	if _, ok := transport.req.Header["content-type"]; ok {
		t.Errorf("expected a single canonical Content-Type, got %v", transport.req.Header)
	}
}

func TestInvoke_GetPayload(t *testing.T) {
	transport := &captureTransport{reply: `{}`}
	c := New("http://hooks.test", WithGetPayload(), WithHTTPClient(&http.Client{Transport: transport}))

	_, err := c.Invoke(context.Background(), Call{
		Method: http.MethodGet,
		Path:   "/webhook/get",
		Body:   json.RawMessage(`{"q":1}`),
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if transport.body != `{"q":1}` {
		t.Errorf("GET body = %q, want payload to be sent", transport.body)
	}
}

func TestInvoke_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		reply      string
		wantKind   ErrorKind
		wantStatus int
		wantText   string
	}{
		{
			name:       "non-2xx status",
			status:     http.StatusNotFound,
			reply:      `{"message":"Not Found"}`,
			wantKind:   KindStatus,
			wantStatus: http.StatusNotFound,
			wantText:   "Not Found",
		},
		{
			name:     "invalid json",
			status:   http.StatusOK,
			reply:    `Workflow was started`,
			wantKind: KindParse,
			wantText: "invalid JSON",
		},
		{
			name:     "empty body",
			status:   http.StatusOK,
			reply:    ``,
			wantKind: KindParse,
			wantText: "empty body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &captureTransport{status: tt.status, reply: tt.reply}
			c := New("http://n8n.test", WithHTTPClient(&http.Client{Transport: transport}))

			_, err := c.Invoke(context.Background(), Call{Method: http.MethodGet, Path: "/api/v1/workflows"})
			var rerr *Error
			if !errors.As(err, &rerr) {
				t.Fatalf("Invoke() error = %v, want *Error", err)
			}
			if rerr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", rerr.Kind, tt.wantKind)
			}
			if rerr.StatusCode != tt.wantStatus && tt.wantStatus != 0 {
				t.Errorf("StatusCode = %d, want %d", rerr.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantText)
			}
			if !strings.Contains(err.Error(), "http://n8n.test/api/v1/workflows") {
				t.Errorf("Error() = %q, want target URL", err.Error())
			}
		})
	}
}

func TestInvoke_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.Invoke(context.Background(), Call{Method: http.MethodGet, Path: "/api/v1/workflows"})

	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("Invoke() error = %v, want *Error", err)
	}
	if rerr.Kind != KindTransport {
		t.Errorf("Kind = %s, want transport", rerr.Kind)
	}
	if rerr.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

func TestInvoke_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.Invoke(ctx, Call{Method: http.MethodGet, Path: "/"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke() error = %v, want context.Canceled", err)
	}
}
