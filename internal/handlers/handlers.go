// Package handlers binds HTTP requests to the services and renders their results.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"queens/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

// newValidator reports field errors under their JSON or query names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// parseBody binds the JSON body into out and validates it.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("Invalid request body", map[string]string{"body": err.Error()})
	}
	return validateStruct(out)
}

// parseQuery binds the query string into out and validates it.
// Fields of out that are not present in the query keep their value.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.Validation("Invalid query parameters", map[string]string{"query": err.Error()})
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation("Validation failed", nil)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
	return apperrors.Validation("Validation failed", fields)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind    apperrors.Kind    `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ErrorHandler renders handler errors as ErrorResponse bodies.
// Causes of server-side failures are logged and never sent to the client.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			status int
			body   ErrorResponse
			appErr *apperrors.Error
			fErr   *fiber.Error
		)
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			body = ErrorResponse{Kind: appErr.Kind, Message: appErr.Message, Errors: appErr.Fields}
		case errors.As(err, &fErr):
			status = fErr.Code
			body = ErrorResponse{Kind: kindForStatus(status), Message: fErr.Message}
		default:
			status = fiber.StatusInternalServerError
			body = ErrorResponse{Kind: apperrors.KindInternal, Message: http.StatusText(status)}
		}

		entry := log.WithFields(logrus.Fields{
			"status":     status,
			"kind":       body.Kind,
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		})
		if status >= fiber.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}

		return c.Status(status).JSON(body)
	}
}

func kindForStatus(status int) apperrors.Kind {
	switch status {
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.KindNotFound
	case fiber.StatusUnauthorized, fiber.StatusForbidden:
		return apperrors.KindUnauthorized
	case fiber.StatusConflict:
		return apperrors.KindConflict
	case fiber.StatusTooManyRequests:
		return apperrors.KindRateLimited
	case fiber.StatusServiceUnavailable, fiber.StatusGatewayTimeout:
		return apperrors.KindCollaboratorUnavailable
	}
	if status < fiber.StatusInternalServerError {
		return apperrors.KindValidation
	}
	return apperrors.KindInternal
}
