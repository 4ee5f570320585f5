package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

const userIDHeader = "X-User-ID"

type ChatHandler struct {
	service ports.ChatService
	log     *zap.Logger
}

func NewChatHandler(service ports.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log,
	}
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		telemetry.ChatTurnsTotal.WithLabelValues("http", "bad_request").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.UserID == "" {
		req.UserID = c.Get(userIDHeader)
	}

	resp, err := h.service.Relay(c.UserContext(), &req)
	if err != nil {
		telemetry.ChatTurnsTotal.WithLabelValues("http", "error").Inc()
		h.log.Warn("Chat relay failed", zap.String("user_id", req.UserID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Assistant is unavailable"})
	}

	telemetry.ChatTurnsTotal.WithLabelValues("http", "ok").Inc()
	return c.JSON(resp)
}
