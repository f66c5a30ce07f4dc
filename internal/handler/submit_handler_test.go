package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadform/internal/dto"
	middlewarepkg "github.com/octobees/leadform/internal/middleware"
)

type webhookStub struct {
	err       error
	payloads  []any
	requestID string
}

func (s *webhookStub) Relay(ctx context.Context, payload any, requestID string) error {
	s.payloads = append(s.payloads, payload)
	s.requestID = requestID
	return s.err
}

func newSubmitContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const validSubmission = `{"name":"J Doe","email":"j@x.com","companyName":"Acme Inc","companyUrl":"acme.com"}`

func TestSubmitHandler_Success(t *testing.T) {
	e := echo.New()
	stub := &webhookStub{}
	handler := NewSubmitHandler(stub, nil)

	c, rec := newSubmitContext(e, validSubmission)
	c.Set(middlewarepkg.ContextKeyRequestID, "req-123")

	if err := handler.Submit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"submitted"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(stub.payloads) != 1 || stub.requestID != "req-123" {
		t.Fatalf("expected one relay with request id, got %d calls, rid %q", len(stub.payloads), stub.requestID)
	}
	got, ok := stub.payloads[0].(dto.SubmissionRequest)
	if !ok || got.CompanyName != "Acme Inc" || got.CompanyURL != "acme.com" {
		t.Fatalf("unexpected payload: %#v", stub.payloads[0])
	}
}

func TestSubmitHandler_ValidationErrors(t *testing.T) {
	e := echo.New()

	tests := map[string]string{
		"invalid payload": "{",
		"missing email":   `{"name":"J Doe","companyName":"Acme","companyUrl":"acme.com"}`,
		"blank company":   `{"name":"J Doe","email":"j@x.com","companyName":"  ","companyUrl":"acme.com"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &webhookStub{}
			c, rec := newSubmitContext(e, body)

			_ = NewSubmitHandler(stub, nil).Submit(c)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if len(stub.payloads) != 0 {
				t.Fatalf("webhook must not be called for invalid input")
			}
		})
	}
}

func TestSubmitHandler_RelayFailures(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "webhook error",
			err:        &RelayError{StatusCode: http.StatusNotFound, Message: "webhook not registered"},
			wantStatus: http.StatusInternalServerError,
			wantError:  "webhook returned 404: webhook not registered",
		},
		{
			name:       "network error",
			err:        &RelayError{Err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "webhook request failed: dial tcp: connection refused",
		},
		{
			name:       "timeout",
			err:        &RelayError{Timeout: true, Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "webhook timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newSubmitContext(e, validSubmission)

			_ = NewSubmitHandler(&webhookStub{err: tt.err}, nil).Submit(c)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var payload ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Error != tt.wantError {
				t.Fatalf("expected %q, got %q", tt.wantError, payload.Error)
			}
		})
	}
}
