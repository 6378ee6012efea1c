// Package remote implements the single upstream call primitive used to talk
// to n8n: one configured client per target, returning parsed JSON or a typed
// *Error.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The client's transport is
// used as-is, so callers supplying one are responsible for instrumentation.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds a default header sent on every call.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger sets the logger used for resty's internal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithGetPayload lets GET and HEAD calls carry a body.
func WithGetPayload() Option {
	return func(c *Client) {
		c.getPayload = true
	}
}

// Client is a configured upstream target: base URL plus default headers.
// It is safe for concurrent use and never mutated after construction.
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     *slog.Logger
	getPayload bool
	// defaultKeys holds the canonical names of the default headers.
	defaultKeys map[string]struct{}
	rc          *resty.Client
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: make(map[string]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	c.defaultKeys = make(map[string]struct{}, len(c.headers))
	for k := range c.headers {
		c.defaultKeys[http.CanonicalHeaderKey(k)] = struct{}{}
	}

	c.rc = resty.NewWithClient(c.httpClient).
		SetBaseURL(c.baseURL).
		SetHeaders(c.headers).
		SetAllowGetMethodPayload(c.getPayload).
		SetLogger(slogLogger{logger: c.logger})

	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call describes one upstream request.
type Call struct {
	Method string
	// Path is joined to the base URL. {name} placeholders are replaced with
	// the escaped value from PathParams.
	Path       string
	PathParams map[string]string
	// Headers are sent with their keys exactly as given, except that a key
	// matching a default header in any case replaces that default.
	Headers map[string]string
	// Body is JSON-encoded when non-nil. Raw JSON is sent unchanged.
	Body any
}

// Invoke performs the call and returns the response body as JSON. It fails
// with *Error on transport failure, non-2xx status, or a non-JSON body.
func (c *Client) Invoke(ctx context.Context, call Call) (json.RawMessage, error) {
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}

	req := c.rc.R().SetContext(ctx)
	if len(call.PathParams) > 0 {
		req.SetPathParams(call.PathParams)
	}
	for k, v := range call.Headers {
		if _, ok := c.defaultKeys[http.CanonicalHeaderKey(k)]; ok {
			req.SetHeader(k, v)
			continue
		}
		req.SetHeaderVerbatim(k, v)
	}
	if call.Body != nil {
		switch body := call.Body.(type) {
		case json.RawMessage:
			req.SetBody([]byte(body))
		default:
			req.SetBody(body)
		}
	}

	resp, err := req.Execute(method, call.Path)
	target := c.describeURL(call)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: method, URL: target, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &Error{
			Kind:       KindStatus,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       string(resp.Body()),
		}
	}

	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &Error{Kind: KindParse, Method: method, URL: target, StatusCode: resp.StatusCode(), Err: errors.New("empty body")}
	}
	if !json.Valid(body) {
		return nil, &Error{
			Kind:       KindParse,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Body:       string(body),
			Err:        fmt.Errorf("body is not JSON: %q", truncate(string(body), 64)),
		}
	}

	return json.RawMessage(body), nil
}

// describeURL renders the target for error messages without consulting the
// network layer, so transport failures still carry a useful location.
func (c *Client) describeURL(call Call) string {
	path := call.Path
	for k, v := range call.PathParams {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	if path != "" && !strings.HasPrefix(path, "/") && !strings.Contains(path, "://") {
		path = "/" + path
	}
	if strings.Contains(path, "://") {
		return path
	}
	return c.baseURL + path
}
