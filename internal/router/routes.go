package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/leadform/internal/config"
	"github.com/octobees/leadform/internal/handler"
	middlewarepkg "github.com/octobees/leadform/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Submit  *handler.SubmitHandler
	Company *handler.CompanyHandler
	Store   handler.Pinger
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(handlers.Store))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/submit", handlers.Submit.Submit, middlewarepkg.SubmitRateLimiter(cfg.RateLimitSubmit))
	api.GET("/company/:companyName", handlers.Company.Get)
}
