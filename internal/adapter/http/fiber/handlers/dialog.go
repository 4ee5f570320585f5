package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

type DialogHandler struct {
	service ports.DialogService
	log     *zap.Logger
}

func NewDialogHandler(service ports.DialogService, log *zap.Logger) *DialogHandler {
	return &DialogHandler{
		service: service,
		log:     log,
	}
}

// Hook answers one code-hook invocation from the NLU engine. Dispatch
// errors are rendered by middleware.ErrorHandler.
func (h *DialogHandler) Hook(c *fiber.Ctx) error {
	var req domain.IntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.service.Dispatch(c.UserContext(), &req)
	if err != nil {
		h.log.Debug("Dispatch failed",
			zap.String("intent", req.CurrentIntent.Name),
			zap.String("source", string(req.InvocationSource)),
			zap.Error(err),
		)
		return err
	}

	return c.JSON(resp)
}
