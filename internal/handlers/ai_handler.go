package handlers

import (
	"queens/internal/models"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AIHandler exposes raw LLM completions.
type AIHandler struct {
	service *services.AIService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(service *services.AIService) *AIHandler {
	return &AIHandler{service: service}
}

// RegisterRoutes registers the completion route.
func (h *AIHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/openai/test", h.HandleComplete)
}

// HandleComplete forwards a free-form prompt to the language model.
func (h *AIHandler) HandleComplete(c *fiber.Ctx) error {
	var req models.PromptRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.service.Complete(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
