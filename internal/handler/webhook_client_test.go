package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/octobees/leadform/internal/config"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestWebhookClient(t *testing.T, rt roundTripFunc, timeout time.Duration) *WebhookClient {
	t.Helper()
	client, err := NewWebhookClient(context.Background(), &http.Client{Transport: rt}, config.WebhookConfig{
		URL:     "https://n8n.example.com/webhook/tech",
		Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestWebhookClient_Relay(t *testing.T) {
	var (
		captured map[string]string
		header   http.Header
		calls    int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"message":"Workflow was started"}`))
	}))
	defer server.Close()

	client, err := NewWebhookClient(context.Background(), server.Client(), config.WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.timeout != defaultWebhookTimeout {
		t.Fatalf("expected default timeout, got %s", client.timeout)
	}

	payload := map[string]string{"name": "J Doe", "email": "j@x.com", "companyName": "Acme Inc", "companyUrl": "acme.com"}
	if err := client.Relay(context.Background(), payload, "req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one webhook call, got %d", calls)
	}
	if header.Get("X-Request-ID") != "req-1" || header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected headers: %v", header)
	}
	if captured["companyName"] != "Acme Inc" || len(captured) != 4 {
		t.Fatalf("expected payload forwarded as-is, got %v", captured)
	}
}

func TestWebhookClient_Failures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		calls := 0
		client := newTestWebhookClient(t, func(req *http.Request) (*http.Response, error) {
			calls++
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader(`{"code":404,"message":"The requested webhook is not registered."}`)),
			}, nil
		}, time.Second)

		err := client.Relay(context.Background(), map[string]string{}, "")
		var relayErr *RelayError
		if !errors.As(err, &relayErr) {
			t.Fatalf("expected RelayError, got %v", err)
		}
		if relayErr.Timeout || relayErr.StatusCode != http.StatusNotFound || relayErr.Message != "The requested webhook is not registered." {
			t.Fatalf("unexpected relay error: %+v", relayErr)
		}
		if calls != 1 {
			t.Fatalf("expected no retry, got %d calls", calls)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		client := newTestWebhookClient(t, func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}, time.Second)

		err := client.Relay(context.Background(), map[string]string{}, "")
		var relayErr *RelayError
		if !errors.As(err, &relayErr) || relayErr.Timeout {
			t.Fatalf("expected non-timeout RelayError, got %v", err)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Fatalf("expected transport error in message, got %s", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestWebhookClient(t, func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}, 20*time.Millisecond)

		err := client.Relay(context.Background(), map[string]string{}, "")
		var relayErr *RelayError
		if !errors.As(err, &relayErr) || !relayErr.Timeout {
			t.Fatalf("expected timeout RelayError, got %v", err)
		}
		if err.Error() != "webhook timed out" {
			t.Fatalf("unexpected message: %s", err)
		}
	})
}

func TestNewWebhookClient_RequiresURL(t *testing.T) {
	if _, err := NewWebhookClient(context.Background(), http.DefaultClient, config.WebhookConfig{URL: "  "}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestExtractWebhookError(t *testing.T) {
	if msg := extractWebhookError(strings.NewReader(`{"error":"boom"}`)); msg != "boom" {
		t.Fatalf("expected boom, got %s", msg)
	}
	if msg := extractWebhookError(strings.NewReader(`not-json`)); msg != "not-json" {
		t.Fatalf("expected raw body fallback, got %s", msg)
	}
	if msg := extractWebhookError(bytes.NewReader(nil)); msg != "webhook returned an error" {
		t.Fatalf("expected default message, got %s", msg)
	}
}
