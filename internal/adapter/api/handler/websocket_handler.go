package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"quickroom/internal/infrastructure/firebase"
	"quickroom/internal/infrastructure/realtime"
	"quickroom/pkg/errors"
	"quickroom/pkg/logger"
	"quickroom/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	manager    *realtime.Manager
	authClient *firebase.AuthClient
}

func NewWebSocketHandler(manager *realtime.Manager, authClient *firebase.AuthClient) *WebSocketHandler {
	return &WebSocketHandler{
		manager:    manager,
		authClient: authClient,
	}
}

// Connect upgrades the request and registers the client with the manager.
// Browsers cannot set headers on a WebSocket handshake, so the token rides
// in a query parameter instead of Authorization.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthorized("Missing token", nil))
	}

	uid, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed for %s: %v", uid, err)
		return err
	}

	client := &realtime.Client{
		UserID: uid,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump(h.manager)

	return nil
}
