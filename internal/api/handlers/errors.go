package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"simple-todo/internal/apperror"
	"simple-todo/pkg/logger"
)

const internalMessage = "Internal server error"

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindAuth:
		return fiber.StatusUnauthorized
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the app-wide fiber error handler. It is the only place
// errors become status codes; internal details are logged, never sent.
func ErrorHandler(log *logger.Loggers) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := StatusOf(appErr.Kind)
			message := appErr.Message
			if status == fiber.StatusInternalServerError {
				log.Error.Error("Internal error",
					zap.String("method", c.Method()),
					zap.String("url", c.OriginalURL()),
					zap.Error(err),
				)
				message = internalMessage
			}
			return c.Status(status).JSON(fiber.Map{"message": message})
		}

		// routing and body-size errors raised by fiber itself
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		log.Error.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": internalMessage})
	}
}

// badRequest is returned when the body cannot be decoded.
func badRequest(log *logger.Loggers, where string, err error) error {
	log.Error.Warn("Bad request in "+where, zap.Error(err))
	return apperror.Validation("Bad request")
}
