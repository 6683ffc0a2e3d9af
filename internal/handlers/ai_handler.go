package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/services"
)

// AIHandler serves the text-assist passthrough routes. Both fall back to
// deterministic mock output when no provider is configured.
type AIHandler struct {
	ai *services.BadFaithService
}

func NewAIHandler(ai *services.BadFaithService) *AIHandler {
	return &AIHandler{ai: ai}
}

func (h *AIHandler) ImproveText(c *fiber.Ctx) error {
	var req dto.ImproveTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Text is required",
		})
	}

	improved := h.ai.ImproveText(c.Context(), req.Text)
	return c.JSON(dto.ImproveTextResponse{ImprovedText: improved})
}

func (h *AIHandler) Assist(c *fiber.Ctx) error {
	var req dto.AssistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Prompt is required",
		})
	}

	response := h.ai.Assist(c.Context(), req.Prompt)
	return c.JSON(dto.AssistResponse{Response: response})
}
