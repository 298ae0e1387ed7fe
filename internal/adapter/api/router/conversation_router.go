package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupConversationRoutes(g *echo.Group, h *handler.ConversationHandler) {
	conversations := g.Group("/conversations")

	conversations.POST("", h.Start)
	conversations.GET("", h.List)
	conversations.POST("/:id/messages", h.SendMessage)
	conversations.GET("/:id/messages", h.ListMessages)
	conversations.POST("/:id/read", h.MarkRead)
}
