package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/services"
)

const friendlyError = "Something went wrong. Please try again."

// statusFor maps a domain error to an HTTP status and a message that is safe
// to show. Unknown errors get a fixed message.
func statusFor(err error) (int, string) {
	var le *services.LineError
	if errors.As(err, &le) {
		err = le.Err
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, strings.TrimPrefix(err.Error(), domain.ErrUnauthorized.Error()+": ")
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, domain.ErrForbidden.Error()
	}
	return fiber.StatusInternalServerError, friendlyError
}

// respondError writes {"error": ...}. Server-side failures are logged under action.
func respondError(c *fiber.Ctx, action string, err error) error {
	code, msg := statusFor(err)
	body := fiber.Map{"error": msg}
	var le *services.LineError
	if errors.As(err, &le) {
		body["line"] = le.Line
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, nil)
	} else {
		applog.Info(c, action+".rejected", map[string]any{"status": code, "reason": msg})
	}
	return c.Status(code).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"reason": msg})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback: routing and framework errors keep
// their status, anything else becomes a friendly 500 with no internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": friendlyError})
}
