package handler

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/usecase"
	"quickroom/pkg/response"
	"quickroom/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type startConversationRequest struct {
	CounterpartyID string `json:"counterparty_id" validate:"required"`
	ListingID      string `json:"listing_id"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required_without=FileURL,max=4000"`
	FileURL string `json:"file_url" validate:"omitempty,url"`
	Type    string `json:"type" validate:"omitempty,oneof=text image file"`
}

// Start opens (or reuses) the conversation with a counterparty about a
// listing. The same request twice returns the same conversation.
func (h *ConversationHandler) Start(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	resp, err := h.conversationUseCase.FindOrCreate(c.Request().Context(), uid, usecase.StartConversationInput{
		CounterpartyID: req.CounterpartyID,
		ListingID:      req.ListingID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, resp)
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)

	conversations, err := h.conversationUseCase.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	uid := c.Get("uid").(string)
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), uid, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
		FileURL:        req.FileURL,
		Type:           req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	conversationID := c.Param("id")
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.conversationUseCase.ListMessages(c.Request().Context(), uid, conversationID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, pagination.Page, pagination.PageSize)
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	conversationID := c.Param("id")

	if err := h.conversationUseCase.MarkRead(c.Request().Context(), uid, conversationID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "ok"})
}
