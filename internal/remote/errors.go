package remote

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why an upstream call failed.
type ErrorKind string

const (
	// KindTransport covers connection, DNS and timeout failures.
	KindTransport ErrorKind = "transport"

	// KindStatus indicates the upstream answered with a non-2xx status.
	KindStatus ErrorKind = "status"

	// KindParse indicates the upstream body was empty or not valid JSON.
	KindParse ErrorKind = "parse"
)

// maxBodyInError bounds how much of an upstream body is echoed into error text.
const maxBodyInError = 512

// Error is returned by Client.Invoke for every failed call.
type Error struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

// Error renders a description suitable for forwarding to callers.
func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		msg := fmt.Sprintf("%s from %s %s", e.Status, e.Method, e.URL)
		if body := strings.TrimSpace(e.Body); body != "" {
			msg += ": " + truncate(body, maxBodyInError)
		}
		return msg
	case KindParse:
		return fmt.Sprintf("invalid JSON response from %s %s: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
