package handlers

import (
	"queens/internal/middleware"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CanvasHandler serves assignments synced from Canvas.
type CanvasHandler struct {
	service *services.CanvasService
}

// NewCanvasHandler creates a new CanvasHandler.
func NewCanvasHandler(service *services.CanvasService) *CanvasHandler {
	return &CanvasHandler{service: service}
}

// RegisterRoutes registers the Canvas routes.
func (h *CanvasHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/canvas/assignments", h.HandleGetAssignments)
}

// HandleGetAssignments returns the caller's assignments due in the next week.
func (h *CanvasHandler) HandleGetAssignments(c *fiber.Ctx) error {
	assignments, err := h.service.SyncAssignments(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(assignments)
}
