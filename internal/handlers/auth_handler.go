package handlers

import (
	"queens/internal/models"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes. Extra handlers, such as a
// rate limiter, run before each route.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	authRoutes := router.Group("/auth", guards...)
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/signin", h.HandleSignIn)
}

// HandleSignUp handles new user registration.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleSignIn exchanges credentials for a session.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithField("email", req.Email).Info("sign-in rejected")
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   session.AccessToken,
		"tokens":  session,
	})
}
