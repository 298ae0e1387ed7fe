package router

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/adapter/api/handler"
	"quickroom/internal/adapter/api/middleware"
)

// Handlers bundles everything the route tree needs.
type Handlers struct {
	Conversation *handler.ConversationHandler
	Appointment  *handler.AppointmentHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
	File         *handler.FileHandler
	Health       *handler.HealthHandler
}

// Setup registers every route. Health and the WebSocket endpoint live
// outside the authenticated group; the socket carries its token as a query
// parameter and verifies it itself.
func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupHealthRoutes(e, h.Health)
	setupWebSocketRoutes(e, h.WebSocket)

	v1 := e.Group("/v1", authMiddleware.Authenticate)
	setupConversationRoutes(v1, h.Conversation)
	setupAppointmentRoutes(v1, h.Appointment)
	setupNotificationRoutes(v1, h.Notification)
	setupFileRoutes(v1, h.File)
}
