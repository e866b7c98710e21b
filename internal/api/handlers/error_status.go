package handlers

import (
	"SmartCanteen-Backend/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMenuItemNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrNoActiveOrder),
		errors.Is(err, domain.ErrNoHistory):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientAvailability),
		errors.Is(err, domain.ErrDuplicateMenuItemID),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrNotSurpriseDish),
		errors.Is(err, domain.ErrEmptyCatalog):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidPin):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrGeminiAPIFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadRequest
	}
}
