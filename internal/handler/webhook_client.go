package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/leadform/internal/config"
	"github.com/octobees/leadform/internal/metrics"
	middleware "github.com/octobees/leadform/internal/middleware"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookPoster relays a payload to the enrichment webhook.
type WebhookPoster interface {
	Relay(ctx context.Context, payload any, requestID string) error
}

// RelayError reports a failed webhook call. Timeout is set when the call did not finish in time.
type RelayError struct {
	StatusCode int
	Message    string
	Timeout    bool
	Err        error
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	switch {
	case e.Timeout:
		return "webhook timed out"
	case e.StatusCode != 0:
		return fmt.Sprintf("webhook returned %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return "webhook request failed: " + e.Err.Error()
	default:
		return "webhook request failed"
	}
}

// Unwrap exposes the transport error, if any.
func (e *RelayError) Unwrap() error {
	return e.Err
}

// WebhookClient posts submissions to the enrichment webhook exactly once per call.
type WebhookClient struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// NewWebhookClient builds a webhook client. When client is nil and an audience is configured,
// requests carry a Google ID token for that audience.
func NewWebhookClient(ctx context.Context, client *http.Client, cfg config.WebhookConfig) (*WebhookClient, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("webhook url must not be empty")
	}
	if client == nil {
		if cfg.Audience != "" {
			idc, err := idtoken.NewClient(ctx, cfg.Audience)
			if err != nil {
				return nil, fmt.Errorf("create id token client: %w", err)
			}
			client = idc
		} else {
			client = &http.Client{}
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookClient{client: client, url: url, timeout: timeout}, nil
}

// Relay posts payload as JSON and returns once the webhook acknowledges it.
// Non-2xx responses, transport failures and timeouts are returned as *RelayError.
func (c *WebhookClient) Relay(ctx context.Context, payload any, requestID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.WebhookRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return &RelayError{Timeout: isTimeout(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RelayError{StatusCode: resp.StatusCode, Message: extractWebhookError(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func extractWebhookError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "webhook returned an error"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

var _ WebhookPoster = (*WebhookClient)(nil)
