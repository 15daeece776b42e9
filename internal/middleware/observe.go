package middleware

import (
	"context"
	"time"

	"queens/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records one sample per request. Errors from later handlers are
// rendered here so the recorded status is the one sent to the client.
func Metrics(rec metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		rec.RecordRequest(c.Method(), route, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

// Timeout gives every request context a deadline.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
