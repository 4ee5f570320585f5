package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/service/dialog"
	"github.com/seu-repo/dining-concierge/internal/service/order"
)

// submissionFailedMessage is shown instead of the transport error
const submissionFailedMessage = "Order could not be recorded, please try again"

// ErrorHandler renders handler errors as {"error": ...}. Dialog errors map
// to 422 and a failed order submission to 502; anything else is a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := classify(err)

		switch {
		case code >= fiber.StatusInternalServerError:
			log.Error("Request failed",
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		case code == fiber.StatusUnprocessableEntity:
			log.Warn("Rejected code hook", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, dialog.ErrUnsupportedIntent), errors.Is(err, dialog.ErrUnknownInvocation):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, order.ErrSubmission):
		return fiber.StatusBadGateway, submissionFailedMessage
	default:
		return fiber.StatusInternalServerError, err.Error()
	}
}
