package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupNotificationRoutes(g *echo.Group, h *handler.NotificationHandler) {
	notifications := g.Group("/notifications")

	notifications.GET("", h.List)
	notifications.POST("/:id/read", h.MarkRead)
}
