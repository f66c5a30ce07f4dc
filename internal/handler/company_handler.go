package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	middleware "github.com/octobees/leadform/internal/middleware"
	"github.com/octobees/leadform/internal/service"
)

// HeaderMatchStrategy tells clients which matching tier resolved the lookup.
const HeaderMatchStrategy = "X-Match-Strategy"

// CompanyLookup resolves a user typed company name to a normalised record.
type CompanyLookup interface {
	GetCompany(ctx context.Context, name string) (*service.Lookup, error)
}

// CompanyHandler serves enriched company records.
type CompanyHandler struct {
	lookup CompanyLookup
	logger *zap.Logger
}

// NewCompanyHandler constructs a company handler. logger may be nil.
func NewCompanyHandler(lookup CompanyLookup, logger *zap.Logger) *CompanyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyHandler{lookup: lookup, logger: logger}
}

// Get handles GET /api/company/:companyName and returns the bare record.
func (h *CompanyHandler) Get(c echo.Context) error {
	name := c.Param("companyName")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	lookup, err := h.lookup.GetCompany(c.Request().Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuery):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCompanyNotFound):
			return Error(c, http.StatusNotFound, "Company not found")
		case errors.Is(err, service.ErrStoreUnavailable):
			h.logger.Warn("document store unavailable", zap.String("request_id", middleware.RequestIDFromContext(c)), zap.Error(err))
			return Error(c, http.StatusServiceUnavailable, "document store unavailable")
		default:
			h.logger.Error("company lookup failed", zap.String("request_id", middleware.RequestIDFromContext(c)), zap.Error(err))
			return Error(c, http.StatusInternalServerError, err.Error())
		}
	}

	c.Response().Header().Set(HeaderMatchStrategy, string(lookup.Strategy))
	return c.JSON(http.StatusOK, lookup.Record)
}
