// Package client talks to the lead form API: it submits leads, fetches
// company records and polls until the enrichment workflow has written one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/leadform/internal/dto"
	"github.com/octobees/leadform/internal/entity"
)

var (
	// ErrNotFound is returned when the API has no record for the company yet.
	ErrNotFound = errors.New("company not found")
	// ErrEmptyRecord is returned when the API answers 200 without a record body.
	ErrEmptyRecord = errors.New("empty company record")
)

// APIError is a non-2xx answer from the API other than 404 on lookups.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// APIClient calls the lead form HTTP API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// New builds an API client for baseURL. A nil httpClient gets a 15s timeout.
func New(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Submit posts the lead form. It returns once the API has relayed it to the webhook.
func (c *APIClient) Submit(ctx context.Context, req dto.SubmissionRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return eris.Wrap(err, "submit: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "submit: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "submit")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var ack dto.SubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return eris.Wrap(err, "submit: decode response")
	}
	if ack.Status != "submitted" {
		return eris.Errorf("submit: unexpected status %q", ack.Status)
	}
	return nil
}

// GetCompany fetches the normalised record for name. It returns ErrNotFound on 404.
func (c *APIClient) GetCompany(ctx context.Context, name string) (entity.CompanyRecord, error) {
	target := c.baseURL + "/api/company/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "get company: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "get company %q", name)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var record entity.CompanyRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, eris.Wrapf(err, "get company %q: decode record", name)
	}
	if len(record) == 0 {
		return nil, eris.Wrapf(ErrEmptyRecord, "get company %q", name)
	}
	return record, nil
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "request failed"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
