package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
)

func setupFileRoutes(g *echo.Group, h *handler.FileHandler) {
	g.POST("/files/attachments", h.UploadAttachment)
}
