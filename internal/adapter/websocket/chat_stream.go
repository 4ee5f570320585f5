package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

type ChatStreamHandler struct {
	chat   ports.ChatService
	logger *zap.Logger
}

func NewChatStreamHandler(chat ports.ChatService, logger *zap.Logger) *ChatStreamHandler {
	return &ChatStreamHandler{
		chat:   chat,
		logger: logger,
	}
}

// HandleChatStream relays every text frame to the assistant and writes the
// reply back. One connection is one conversation.
func (h *ChatStreamHandler) HandleChatStream(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		userID = uuid.NewString()
	}
	log := h.logger.With(zap.String("user_id", userID))
	log.Debug("Chat stream opened")

	ctx := context.Background()

	for {
		messageType, payload, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Chat stream closed unexpectedly", zap.Error(err))
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		out, err := h.answer(ctx, userID, payload)
		if err != nil {
			log.Error("Failed to encode chat reply", zap.Error(err))
			continue
		}
		if err := c.WriteMessage(websocket.TextMessage, out); err != nil {
			log.Error("Failed to write chat reply", zap.Error(err))
			break
		}
	}
}

// answer relays one frame; a failed relay answers with the fallback reply
func (h *ChatStreamHandler) answer(ctx context.Context, userID string, payload []byte) ([]byte, error) {
	req := decodeFrame(payload)
	req.UserID = userID

	resp, err := h.chat.Relay(ctx, req)
	if err != nil {
		telemetry.ChatTurnsTotal.WithLabelValues("websocket", "error").Inc()
		h.logger.Error("Chat relay failed", zap.String("user_id", userID), zap.Error(err))
		resp = domain.NewChatReply(domain.ChatFallbackReply, time.Now())
	} else {
		telemetry.ChatTurnsTotal.WithLabelValues("websocket", "ok").Inc()
	}

	return json.Marshal(resp)
}

// decodeFrame accepts either a ChatRequest document or bare text
func decodeFrame(payload []byte) *domain.ChatRequest {
	var req domain.ChatRequest
	if err := json.Unmarshal(payload, &req); err == nil && len(req.Messages) > 0 {
		return &req
	}
	return &domain.ChatRequest{Messages: []domain.ChatMessage{{
		Type:         domain.MessageTypeUnstructured,
		Unstructured: domain.Unstructured{Text: strings.TrimSpace(string(payload))},
	}}}
}

// upgradeOnly rejects plain HTTP requests on websocket routes
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		if id := c.Get("X-User-ID"); id != "" {
			c.Locals("user_id", id)
		}
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SetupChatRoutes mounts the chat stream on /ws/chat
func SetupChatRoutes(app *fiber.App, handler *ChatStreamHandler) {
	app.Use("/ws/chat", upgradeOnly)
	app.Get("/ws/chat", websocket.New(handler.HandleChatStream))
}
