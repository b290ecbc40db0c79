package handlers

import (
	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"farmdirect/internal/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {success:false, code, message}. Store failures
// are logged with their cause and answered with a generic message.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	kind := apperr.KindOf(err)
	code := apperr.CodeOf(err)

	message := "Something went wrong, please try again"
	var ae *apperr.Error
	if kind == apperr.KindPersistence {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Error(err),
		)
	} else if errors.As(err, &ae) {
		message = ae.Message
		logger.Debug("request rejected", zap.String("path", c.Path()), zap.String("code", code))
	}

	return c.Status(statusFor(kind)).JSON(fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	})
}

func invalidBody(c *fiber.Ctx, logger *zap.Logger, err error) error {
	logger.Debug("invalid request body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    "invalid_body",
		"message": "Invalid request body",
	})
}
