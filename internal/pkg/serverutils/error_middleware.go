package serverutils

import (
	"errors"

	"midgpt-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware maps classified errors onto HTTP statuses.
// Anything unclassified is treated as a persistence failure and hidden
// behind a generic 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return ctx.Status(statusForKind(appErr.Kind)).JSON(fiber.Map{
				"status":  statusForKind(appErr.Kind),
				"kind":    string(appErr.Kind),
				"message": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "internal server error"))
	}
}
