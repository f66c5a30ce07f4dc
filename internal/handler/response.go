package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends an error response using the shared error body.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, ErrorResponse{Error: message})
}

// Health reports liveness for load balancers.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Pinger is satisfied by every document store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports 503 while the document store cannot be reached.
func Ready(store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.Logger().Warnf("readiness check failed: %v", err)
			return Error(c, http.StatusServiceUnavailable, "document store unavailable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
}
