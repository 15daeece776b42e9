package handlers

import (
	"queens/internal/middleware"
	"queens/internal/models"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OfferHandler handles HTTP requests for marketplace offers.
type OfferHandler struct {
	service *services.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(service *services.OfferService) *OfferHandler {
	return &OfferHandler{service: service}
}

// RegisterRoutes registers the offer routes.
func (h *OfferHandler) RegisterRoutes(router fiber.Router) {
	offerRoutes := router.Group("/offers")
	offerRoutes.Get("/", h.HandleListOffers)
	offerRoutes.Post("/", h.HandleCreateOffer)
	offerRoutes.Get("/:id", h.HandleGetOffer)
	offerRoutes.Put("/:id", h.HandleUpdateOffer)
	offerRoutes.Delete("/:id", h.HandleDeleteOffer)
}

// HandleListOffers returns a page of active offers.
func (h *OfferHandler) HandleListOffers(c *fiber.Ctx) error {
	q := models.OfferQuery{Limit: 10}
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	offers, err := h.service.ListOffers(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return c.JSON(offers)
}

// HandleCreateOffer creates a new offer owned by the caller.
func (h *OfferHandler) HandleCreateOffer(c *fiber.Ctx) error {
	var req models.OfferCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	offer, err := h.service.CreateOffer(c.UserContext(), middleware.CallerEmail(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleGetOffer retrieves a single offer by its ID.
func (h *OfferHandler) HandleGetOffer(c *fiber.Ctx) error {
	offer, err := h.service.GetOffer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(offer)
}

// HandleUpdateOffer applies a partial update to one of the caller's offers.
func (h *OfferHandler) HandleUpdateOffer(c *fiber.Ctx) error {
	var req models.OfferUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	offer, err := h.service.UpdateOffer(c.UserContext(), middleware.CallerEmail(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(offer)
}

// HandleDeleteOffer removes one of the caller's offers.
func (h *OfferHandler) HandleDeleteOffer(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteOffer(c.UserContext(), middleware.CallerEmail(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Offer " + id + " deleted successfully"})
}
