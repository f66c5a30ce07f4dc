package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadform/internal/dto"
	"github.com/octobees/leadform/internal/metrics"
	middleware "github.com/octobees/leadform/internal/middleware"
)

// SubmitHandler relays lead form submissions to the enrichment webhook.
type SubmitHandler struct {
	webhook WebhookPoster
	logger  *zap.Logger
}

// NewSubmitHandler constructs a submit handler. logger may be nil.
func NewSubmitHandler(webhook WebhookPoster, logger *zap.Logger) *SubmitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitHandler{webhook: webhook, logger: logger}
}

// Submit handles POST /api/submit. The payload is forwarded unchanged and the
// response is sent as soon as the webhook acknowledges it.
func (h *SubmitHandler) Submit(c echo.Context) error {
	var req dto.SubmissionRequest
	if err := c.Bind(&req); err != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if missing := req.MissingFields(); len(missing) > 0 {
		metrics.Submissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return Error(c, http.StatusBadRequest, strings.Join(missing, ", ")+" required")
	}

	rid := middleware.RequestIDFromContext(c)
	if err := h.webhook.Relay(c.Request().Context(), req, rid); err != nil {
		var relayErr *RelayError
		if errors.As(err, &relayErr) && relayErr.Timeout {
			metrics.Submissions.WithLabelValues(metrics.OutcomeTimeout).Inc()
			h.logger.Warn("webhook timed out", zap.String("request_id", rid), zap.String("company", req.CompanyName))
			return Error(c, http.StatusGatewayTimeout, err.Error())
		}
		metrics.Submissions.WithLabelValues(metrics.OutcomeRelayError).Inc()
		h.logger.Error("webhook relay failed", zap.String("request_id", rid), zap.String("company", req.CompanyName), zap.Error(err))
		return Error(c, http.StatusInternalServerError, err.Error())
	}

	metrics.Submissions.WithLabelValues(metrics.OutcomeSubmitted).Inc()
	h.logger.Info("submission relayed", zap.String("request_id", rid), zap.String("company", req.CompanyName))
	return c.JSON(http.StatusOK, dto.SubmissionResponse{Status: "submitted"})
}
