package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/chat"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// ChatHandler relays prompts to the assistant.
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// Ask POST /api/chat.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	text, err := h.service.Ask(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Text: text}})
}
