package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupWebSocketRoutes(e *echo.Echo, h *handler.WebSocketHandler) {
	e.GET("/ws", h.Connect)
}
