package handlers

import (
	"queens/internal/middleware"
	"queens/internal/models"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// JournalHandler handles HTTP requests for journal entries.
type JournalHandler struct {
	service *services.JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(service *services.JournalService) *JournalHandler {
	return &JournalHandler{service: service}
}

// RegisterRoutes registers the journal routes.
func (h *JournalHandler) RegisterRoutes(router fiber.Router) {
	journalRoutes := router.Group("/journals")
	journalRoutes.Post("/", h.HandleCreateJournal)
	// Static segments go before /:id.
	journalRoutes.Get("/insights", h.HandleGetInsights)
	journalRoutes.Get("/user/:email", h.HandleListJournals)
	journalRoutes.Get("/:id", h.HandleGetJournal)
	journalRoutes.Delete("/:id", h.HandleDeleteJournal)
	journalRoutes.Patch("/:id/emotion-analysis", h.HandleUpdateEmotionAnalysis)

	router.Post("/journal/analyze", h.HandleAnalyze)
}

// HandleCreateJournal stores an entry owned by the caller.
func (h *JournalHandler) HandleCreateJournal(c *fiber.Ctx) error {
	var req models.JournalCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	journal, err := h.service.CreateJournal(c.UserContext(), middleware.CallerEmail(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(journal)
}

// HandleListJournals returns a page of a user's entries, newest first.
func (h *JournalHandler) HandleListJournals(c *fiber.Ctx) error {
	q := models.PageQuery{Limit: 100}
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	journals, err := h.service.ListJournals(c.UserContext(), middleware.CallerEmail(c), c.Params("email"), q.Skip, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(journals)
}

// HandleGetJournal returns one of the caller's entries.
func (h *JournalHandler) HandleGetJournal(c *fiber.Ctx) error {
	journal, err := h.service.GetJournal(c.UserContext(), middleware.CallerEmail(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(journal)
}

// HandleDeleteJournal removes one of the caller's entries.
func (h *JournalHandler) HandleDeleteJournal(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteJournal(c.UserContext(), middleware.CallerEmail(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Journal " + id + " deleted successfully"})
}

// HandleUpdateEmotionAnalysis sets the insight annotation of an entry.
func (h *JournalHandler) HandleUpdateEmotionAnalysis(c *fiber.Ctx) error {
	var analysis models.EmotionAnalysis
	if err := parseBody(c, &analysis); err != nil {
		return err
	}
	journal, err := h.service.UpdateEmotionAnalysis(c.UserContext(), middleware.CallerEmail(c), c.Params("id"), &analysis)
	if err != nil {
		return err
	}
	return c.JSON(journal)
}

// HandleGetInsights aggregates the emotion annotations of a user's entries.
func (h *JournalHandler) HandleGetInsights(c *fiber.Ctx) error {
	var q models.InsightsQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	insights, err := h.service.GetInsights(c.UserContext(), middleware.CallerEmail(c), &q)
	if err != nil {
		return err
	}
	return c.JSON(insights)
}

// HandleAnalyze classifies free text without storing it.
func (h *JournalHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	analysis, err := h.service.AnalyzeText(c.UserContext(), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(models.AnalyzeResponse{Status: "success", Analysis: *analysis})
}
