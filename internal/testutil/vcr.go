// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// NewVCRRecorder replays the named cassette from testdata/fixtures. Set
// VCR_MODE=record to capture fresh interactions against a live n8n; the
// recorder strips the API key before saving.
func NewVCRRecorder(t *testing.T, cassetteName string) *recorder.Recorder {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, nil)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	// Upstream calls are identified by verb and target; bodies are asserted
	// by the tests themselves.
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && r.URL.String() == i.URL
	})

	r.AddFilter(func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "X-N8n-Api-Key")
		delete(i.Request.Headers, "X-N8N-API-KEY")
		return nil
	})

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	})

	return r
}

// VCRHTTPClient returns an HTTP client that routes through the recorder.
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{
		Transport: r,
	}
}
