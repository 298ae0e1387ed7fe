package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"quickroom/internal/infrastructure/firebase"
	"quickroom/pkg/response"
)

type HealthHandler struct {
	authClient  *firebase.AuthClient
	environment string
}

func NewHealthHandler(authClient *firebase.AuthClient, environment string) *HealthHandler {
	return &HealthHandler{
		authClient:  authClient,
		environment: environment,
	}
}

// Live answers as long as the process runs.
func (h *HealthHandler) Live(c echo.Context) error {
	return response.Success(c, map[string]string{
		"status":      "ok",
		"environment": h.environment,
	})
}

// Ready additionally checks the upstream auth dependency.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.authClient.TestConnection(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}

	return response.Success(c, map[string]string{"status": "ready"})
}
