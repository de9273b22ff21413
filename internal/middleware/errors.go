package middleware

import (
	"errors"

	"jammal/internal/models"

	"github.com/gofiber/fiber/v2"
)

// StatusOf maps a domain error to its HTTP status. Errors without a kind are 500.
func StatusOf(err error) int {
	switch models.KindOf(err) {
	case models.KindUnauthorized:
		return fiber.StatusUnauthorized
	case models.KindForbidden:
		return fiber.StatusForbidden
	case models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindValidation, models.KindSignatureMismatch:
		return fiber.StatusBadRequest
	case models.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// MessageOf returns the user-visible message of err. Internal errors are not
// exposed to clients.
func MessageOf(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
