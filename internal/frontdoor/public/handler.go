// Package public serves unauthenticated helper endpoints under /api/public
// that n8n HTTP Request and Webhook nodes can call back into.
package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/n8n-gateway/internal/core/domain"
	"github.com/tjfontaine/n8n-gateway/internal/frontdoor"
	"github.com/tjfontaine/n8n-gateway/internal/server"
)

const (
	BasePath = "/api/public"

	// ServiceName is reported by the health endpoint.
	ServiceName = "n8n-integration-api"
)

var errInvalidJSON = errors.New("invalid JSON body")

// Result is the payload built by the public endpoints.
type Result map[string]any

type Option func(*Handler)

// WithClock overrides the time source used for timestamps and generated IDs.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

type Handler struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registrations returns the routes served by h.
func Registrations(h *Handler) []frontdoor.HandlerRegistration {
	return []frontdoor.HandlerRegistration{
		{Path: BasePath + "/health", Method: http.MethodGet, Handler: h.HandleHealth},
		{Path: BasePath + "/process", Method: http.MethodPost, Handler: h.HandleProcess},
		{Path: BasePath + "/users", Method: http.MethodPost, Handler: h.HandleCreateUser},
		{Path: BasePath + "/users/{userId}", Method: http.MethodGet, Handler: h.HandleGetUser},
		{Path: BasePath + "/validate", Method: http.MethodPost, Handler: h.HandleValidate},
		{Path: BasePath + "/calculate", Method: http.MethodPost, Handler: h.HandleCalculate},
		{Path: BasePath + "/webhook/receive", Method: http.MethodPost, Handler: h.HandleReceiveWebhook},
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Service is healthy", Result{
		"status":    "UP",
		"timestamp": h.now(),
		"service":   ServiceName,
	}))
}

// HandleProcess echoes the input. When a "data" member is present its text
// length and upper-cased form are added.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeObject(w, r, "process data")
	if !ok {
		return
	}

	result := Result{
		"originalData": input,
		"processedAt":  h.now(),
		"status":       "processed",
		"message":      "Data processed successfully",
	}
	if raw, present := input["data"]; present {
		text := scalarText(raw)
		result["dataLength"] = utf8.RuneCountInString(text)
		result["dataUpperCase"] = strings.ToUpper(text)
	}
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Data processed", result))
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeObject(w, r, "create user")
	if !ok {
		return
	}

	now := h.now()
	user := make(Result, len(input)+3)
	for k, v := range input {
		user[k] = v
	}
	user["id"] = now.UnixMilli()
	user["createdAt"] = now
	user["status"] = "active"
	server.AddLogField(r.Context(), "user_id", strconv.FormatInt(now.UnixMilli(), 10))

	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("User created", user))
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	server.AddLogField(r.Context(), "user_id", id)

	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("User retrieved", Result{
		"id":          id,
		"name":        "Sample User",
		"email":       "sample@example.com",
		"status":      "active",
		"retrievedAt": h.now(),
	}))
}

// HandleValidate counts the submitted fields and checks an optional email.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeObject(w, r, "validate data")
	if !ok {
		return
	}

	result := Result{
		"isValid":    true,
		"checkedAt":  h.now(),
		"fieldCount": len(input),
	}
	if raw, present := input["email"]; present {
		email := scalarText(raw)
		result["emailValid"] = strings.Contains(email, "@") && strings.Contains(email, ".")
	}
	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Validation completed", result))
}

// HandleCalculate applies operation to num1 and num2. Missing operands count
// as zero, division by zero and unknown operations yield zero.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeObject(w, r, "calculate")
	if !ok {
		return
	}

	operation := "add"
	if raw, present := input["operation"]; present && !domain.IsNull(raw) {
		operation = scalarText(raw)
	}
	num1, err := operand(input, "num1")
	if err != nil {
		h.badRequest(w, r, "calculate", err)
		return
	}
	num2, err := operand(input, "num2")
	if err != nil {
		h.badRequest(w, r, "calculate", err)
		return
	}

	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Calculation completed", Result{
		"operation":    operation,
		"num1":         num1,
		"num2":         num2,
		"result":       calculate(operation, num1, num2),
		"calculatedAt": h.now(),
	}))
}

func calculate(operation string, num1, num2 float64) float64 {
	switch strings.ToLower(operation) {
	case "add":
		return num1 + num2
	case "subtract":
		return num1 - num2
	case "multiply":
		return num1 * num2
	case "divide":
		if num2 == 0 {
			return 0
		}
		return num1 / num2
	default:
		return 0
	}
}

// HandleReceiveWebhook acknowledges a delivery from an n8n Webhook node. The
// body is optional.
func (h *Handler) HandleReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := frontdoor.ReadBody(w, r)
	if err != nil {
		h.badRequest(w, r, "receive webhook", err)
		return
	}
	var data domain.Object
	if body != nil {
		if data, err = domain.DecodeObject(body); err != nil {
			h.badRequest(w, r, "receive webhook", err)
			return
		}
	}

	h.logger.InfoContext(r.Context(), "received webhook",
		slog.String("request_id", server.GetRequestID(r.Context())),
		slog.Int("headers", len(r.Header)),
		slog.Int("fields", len(data)),
	)

	frontdoor.WriteJSON(w, http.StatusOK, domain.Success("Webhook received", Result{
		"received":        true,
		"timestamp":       h.now(),
		"dataReceived":    data,
		"headersReceived": len(r.Header),
	}))
}

func (h *Handler) decodeObject(w http.ResponseWriter, r *http.Request, verb string) (domain.Object, bool) {
	body, err := frontdoor.ReadBody(w, r)
	if err != nil {
		h.badRequest(w, r, verb, err)
		return nil, false
	}
	if body == nil {
		h.badRequest(w, r, verb, frontdoor.ErrEmptyBody)
		return nil, false
	}
	if !json.Valid(body) {
		h.badRequest(w, r, verb, errInvalidJSON)
		return nil, false
	}
	obj, err := domain.DecodeObject(body)
	if err != nil {
		h.badRequest(w, r, verb, err)
		return nil, false
	}
	return obj, true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, verb string, err error) {
	server.AddError(r.Context(), err)
	frontdoor.WriteJSON(w, http.StatusBadRequest, domain.Failure[any]("Failed to "+verb+": "+err.Error()))
}

// scalarText renders a JSON value as text: strings unquoted, anything else
// as its JSON form.
func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// operand reads a numeric member given as a JSON number or numeric string.
func operand(input domain.Object, key string) (float64, error) {
	raw, present := input[key]
	if !present || domain.IsNull(raw) {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(scalarText(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %s", key, strings.TrimSpace(string(raw)))
	}
	return v, nil
}
