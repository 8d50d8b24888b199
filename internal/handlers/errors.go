package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message, Code: code})
}

// respondError maps service errors to HTTP responses. Unknown errors are
// passed to the app error handler, which hides their details.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		return fail(c, fiber.StatusBadRequest, "code_not_found", "No verification code was requested for this email")
	case errors.Is(err, services.ErrCodeExpired):
		return fail(c, fiber.StatusBadRequest, "code_expired", "The verification code has expired, request a new one")
	case errors.Is(err, services.ErrCodeMismatch):
		return fail(c, fiber.StatusBadRequest, "code_mismatch", "The verification code is incorrect")
	case errors.Is(err, services.ErrValidation):
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, storage.ErrUnsupportedMedia):
		return fail(c, fiber.StatusBadRequest, "unsupported_media", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, services.ErrReportNotFound):
		return fail(c, fiber.StatusNotFound, "report_not_found", "Report not found")
	case errors.Is(err, services.ErrNewsNotFound):
		return fail(c, fiber.StatusNotFound, "news_not_found", "News item not found")
	case errors.Is(err, services.ErrNotificationFailed):
		return fail(c, fiber.StatusBadGateway, "notification_failed", "The email could not be sent, try again later")
	}
	slog.Error("request failed", "method", c.Method(), "path", c.Path(),
		"request_id", requestID(c), "error", err.Error())
	return err
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
