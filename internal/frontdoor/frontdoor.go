// Package frontdoor holds the pieces shared by the inbound HTTP surfaces:
// route registration, JSON request decoding and response writing.
//
// Each frontdoor package exposes a Registrations function returning the
// routes it serves. The runtime mounts them on the server router:
//
//	frontdoor.Mount(srv.Router, n8n.Registrations(handler))
package frontdoor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 10 << 20

// HandlerRegistration represents a registered HTTP handler.
type HandlerRegistration struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// Mount registers every route on r.
func Mount(r chi.Router, regs []HandlerRegistration) {
	for _, reg := range regs {
		r.Method(reg.Method, reg.Path, reg.Handler)
	}
}

// ErrEmptyBody is returned by DecodeJSON when the request carries no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := ReadBody(w, r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// ReadBody returns the raw request body with surrounding whitespace removed.
// An absent body yields nil.
func ReadBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	return json.RawMessage(trimmed), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks v against its validate tags. Failures are reported using
// JSON field names, e.g. "workflowId is required".
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// WriteJSON writes payload as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
