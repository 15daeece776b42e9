package handlers

import (
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MenstrualHealthHandler serves the derived cycle views.
type MenstrualHealthHandler struct {
	service *services.MenstrualHealthService
}

// NewMenstrualHealthHandler creates a new MenstrualHealthHandler.
func NewMenstrualHealthHandler(service *services.MenstrualHealthService) *MenstrualHealthHandler {
	return &MenstrualHealthHandler{service: service}
}

// RegisterRoutes registers the menstrual health routes.
func (h *MenstrualHealthHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/menstrual-health/:email")
	routes.Get("/phase", h.HandleGetPhase)
	routes.Get("/recommendations", h.HandleGetRecommendations)
	routes.Get("/suggested-events", h.HandleGetSuggestedEvents)
}

// HandleGetPhase returns the current cycle phase of a user.
func (h *MenstrualHealthHandler) HandleGetPhase(c *fiber.Ctx) error {
	phase, err := h.service.GetPhase(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(phase)
}

// HandleGetRecommendations returns advice tailored to the current phase.
func (h *MenstrualHealthHandler) HandleGetRecommendations(c *fiber.Ctx) error {
	recs, err := h.service.GetRecommendations(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(recs)
}

// HandleGetSuggestedEvents proposes calendar events for the coming week.
func (h *MenstrualHealthHandler) HandleGetSuggestedEvents(c *fiber.Ctx) error {
	events, err := h.service.GetSuggestedEvents(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(events)
}
