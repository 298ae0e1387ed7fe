package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"quickroom/internal/usecase"
	"quickroom/pkg/errors"
	"quickroom/pkg/response"
	"quickroom/pkg/utils"
)

type AppointmentHandler struct {
	appointmentUseCase *usecase.AppointmentUseCase
}

func NewAppointmentHandler(appointmentUseCase *usecase.AppointmentUseCase) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUseCase: appointmentUseCase,
	}
}

type requestAppointmentRequest struct {
	ListingID   string `json:"listing_id" validate:"required"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Notes       string `json:"notes" validate:"max=500"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

func (h *AppointmentHandler) Request(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req requestAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return response.Error(c, errors.BadRequest("scheduled_at must be an RFC3339 timestamp", err))
	}

	appointment, err := h.appointmentUseCase.Request(c.Request().Context(), uid, usecase.RequestAppointmentInput{
		ListingID:   req.ListingID,
		ScheduledAt: scheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, appointment)
}

// Transition moves an appointment to a new status. Which statuses the
// caller may reach depends on whether they own the listing or requested
// the viewing.
func (h *AppointmentHandler) Transition(c echo.Context) error {
	uid := c.Get("uid").(string)
	appointmentID := c.Param("id")

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	appointment, err := h.appointmentUseCase.Transition(c.Request().Context(), uid, appointmentID, req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, appointment)
}

func (h *AppointmentHandler) Get(c echo.Context) error {
	uid := c.Get("uid").(string)

	appointment, err := h.appointmentUseCase.GetByID(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, appointment)
}

func (h *AppointmentHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	appointments, total, err := h.appointmentUseCase.ListForUser(c.Request().Context(), uid, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, appointments, total, pagination.Page, pagination.PageSize)
}
