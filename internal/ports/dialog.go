package ports

import (
	"context"

	"github.com/seu-repo/dining-concierge/internal/domain"
)

// DialogService answers one code-hook turn of the reservation conversation
type DialogService interface {
	Dispatch(ctx context.Context, req *domain.IntentRequest) (domain.Response, error)
}

// OrderSubmitter hands a completed order to downstream fulfillment
type OrderSubmitter interface {
	Submit(ctx context.Context, order domain.OrderRecord) (*domain.SubmissionReceipt, error)
}

// TextRequest is one line of user text sent to the NLU engine
type TextRequest struct {
	BotName   string
	BotAlias  string
	UserID    string
	InputText string
}

// NLUClient turns free text into the engine's next prompt
type NLUClient interface {
	PostText(ctx context.Context, req TextRequest) (*domain.NLUReply, error)
}

// ChatService relays web chat turns to the NLU engine
type ChatService interface {
	Relay(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
}
