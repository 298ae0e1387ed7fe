package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupHealthRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/health/live", h.Live)
	e.GET("/health/ready", h.Ready)
}
