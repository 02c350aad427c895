package serverutils

import (
	"errors"

	"perry-be/internal/apperr"
	"perry-be/internal/constant"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the handlers into the
// stable user-facing envelope. Typed domain errors map to specific
// statuses; anything unknown collapses to a generic 500 so internals
// never leak to the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *apperr.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, validationErr.Error()))
		}

		var sessionErr *apperr.InvalidSessionError
		if errors.As(err, &sessionErr) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, constant.NoticeSessionReset))
		}

		if errors.Is(err, apperr.ErrSendInFlight) {
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(409, err.Error()))
		}

		var modelCfgErr *apperr.ModelConfigError
		if errors.As(err, &modelCfgErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(502, constant.NoticeModelConfig))
		}

		var modelErr *apperr.ModelError
		if errors.As(err, &modelErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(502, constant.NoticeModelFailure))
		}

		var storeErr *apperr.StoreError
		if errors.As(err, &storeErr) {
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, constant.NoticeSaveFailure))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, constant.NoticeSystemTrouble))
	}
}
