package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

// FallbackReply is sent when the client posted nothing to relay
const FallbackReply = domain.ChatFallbackReply

// Service relays chat text to the NLU engine, which drives the dialog
// through its code hook.
type Service struct {
	nlu      ports.NLUClient
	botName  string
	botAlias string
	now      func() time.Time
	log      *zap.Logger
}

func NewService(nlu ports.NLUClient, botName, botAlias string, log *zap.Logger) *Service {
	return &Service{
		nlu:      nlu,
		botName:  botName,
		botAlias: botAlias,
		now:      time.Now,
		log:      log,
	}
}

// Relay forwards the first message of the request and wraps the engine's
// reply as a single unstructured message.
func (s *Service) Relay(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	text := strings.TrimSpace(req.FirstText())
	if text == "" {
		return s.reply(FallbackReply), nil
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	nluReply, err := s.nlu.PostText(ctx, ports.TextRequest{
		BotName:   s.botName,
		BotAlias:  s.botAlias,
		UserID:    userID,
		InputText: text,
	})
	if err != nil {
		s.log.Error("NLU request failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.log.Debug("NLU reply",
		zap.String("user_id", userID),
		zap.String("intent", nluReply.IntentName),
		zap.String("dialog_state", nluReply.DialogState),
	)

	message := nluReply.Message
	if message == "" {
		message = FallbackReply
	}
	return s.reply(message), nil
}

func (s *Service) reply(text string) *domain.ChatResponse {
	return domain.NewChatReply(text, s.now())
}
