package middleware

import (
	"context"
	"strings"

	"queens/internal/apperrors"
	"queens/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalEmail   = "email"
	LocalSubject = "user_id"
)

// TokenValidator resolves a bearer token to its owner.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*identity.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid session token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Unauthorized("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		owner, err := validator.ValidateToken(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(LocalEmail, owner.Email)
		c.Locals(LocalSubject, owner.Subject)
		return c.Next()
	}
}

// CallerEmail returns the email of the authenticated caller, or "" on public routes.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}
