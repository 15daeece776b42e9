package handlers

import (
	"queens/internal/middleware"
	"queens/internal/models"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves profile reads and updates.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/:email", h.HandleGetUser)
	userRoutes.Patch("/:email", h.HandleUpdateUser)
	userRoutes.Delete("/:email", h.HandleDisableUser)
}

// HandleListUsers returns a page of users.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	q := models.PageQuery{Limit: 100}
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	users, err := h.service.GetAllUsers(c.UserContext(), q.Skip, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateUser applies a partial update to the caller's profile.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req models.UserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.UserContext(), middleware.CallerEmail(c), c.Params("email"), &req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleDisableUser soft-deletes the caller's account.
func (h *UserHandler) HandleDisableUser(c *fiber.Ctx) error {
	email := c.Params("email")
	if err := h.service.DisableUser(c.UserContext(), middleware.CallerEmail(c), email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User " + email + " disabled"})
}
