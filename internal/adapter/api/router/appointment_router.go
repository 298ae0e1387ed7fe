package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupAppointmentRoutes(g *echo.Group, h *handler.AppointmentHandler) {
	appointments := g.Group("/appointments")

	appointments.POST("", h.Request)
	appointments.GET("", h.List)
	appointments.GET("/:id", h.Get)
	appointments.PATCH("/:id/status", h.Transition)
}
