// Package handler provides shared helpers for the web handlers.
package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ambulancia-platform/ms-auth/internal/auth"
)

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// ErrNilACSFatalLogMsg is used if the app, cfg or auth service pointer is nil.
	ErrNilACSFatalLogMsg = "app, cfg or auth service is nil"
)

// Validate is the shared request validator instance.
var Validate = validator.New()

// ParseAndValidate parses the request body into dst and validates it.
// Failures are malformed input: rejected before any store is touched.
func ParseAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return err
	}

	return Validate.Struct(dst)
}

// OK sends a success envelope with the given message and payload.
func OK(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Fail translates a service error to its HTTP status and a failure envelope.
// Internal faults are logged and collapsed to a generic message so no raw
// storage error ever reaches a caller.
func Fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	message := err.Error()

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		message = "internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// FailMalformed rejects an unparseable or invalid request body.
func FailMalformed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid request: " + err.Error(),
	})
}

func statusOf(err error) int {
	switch auth.Categorize(err) {
	case auth.CategoryValidation:
		return fiber.StatusUnprocessableEntity
	case auth.CategoryAuthorization:
		return fiber.StatusForbidden
	case auth.CategoryMalformed:
		return fiber.StatusBadRequest
	case auth.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
