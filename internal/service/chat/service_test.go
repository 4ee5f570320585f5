package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/mocks"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

func newTestService(nlu *mocks.MockNLUClient) *Service {
	logger, _ := zap.NewDevelopment()
	s := NewService(nlu, "Dining", "Dining", logger)
	s.now = func() time.Time { return time.Unix(1700000000, 500000000) }
	return s
}

func chatRequest(userID, text string) *domain.ChatRequest {
	return &domain.ChatRequest{
		UserID: userID,
		Messages: []domain.ChatMessage{{
			Type:         domain.MessageTypeUnstructured,
			Unstructured: domain.Unstructured{Text: text},
		}},
	}
}

func TestRelay_ForwardsTextToNLU(t *testing.T) {
	nlu := &mocks.MockNLUClient{}
	service := newTestService(nlu)

	resp, err := service.Relay(context.Background(), chatRequest("user-1", "  I need food suggestions "))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(nlu.Requests) != 1 {
		t.Fatalf("expected 1 NLU request, got %d", len(nlu.Requests))
	}
	got := nlu.Requests[0]
	if got.InputText != "I need food suggestions" || got.UserID != "user-1" || got.BotName != "Dining" {
		t.Errorf("unexpected NLU request %+v", got)
	}

	if len(resp.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(resp.Messages))
	}
	msg := resp.Messages[0]
	if msg.Type != "unstructured" || msg.Unstructured.ID != "1" {
		t.Errorf("unexpected message envelope %+v", msg)
	}
	if msg.Unstructured.Text != "What city are you looking to dine in?" {
		t.Errorf("unexpected text %q", msg.Unstructured.Text)
	}
	if msg.Unstructured.Timestamp != "1700000000.500000" {
		t.Errorf("unexpected timestamp %q", msg.Unstructured.Timestamp)
	}
}

func TestRelay_EmptyRequestGetsFallback(t *testing.T) {
	nlu := &mocks.MockNLUClient{}
	service := newTestService(nlu)

	for _, req := range []*domain.ChatRequest{{}, chatRequest("u", "   ")} {
		resp, err := service.Relay(context.Background(), req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Messages[0].Unstructured.Text != FallbackReply {
			t.Errorf("expected fallback reply, got %q", resp.Messages[0].Unstructured.Text)
		}
	}
	if len(nlu.Requests) != 0 {
		t.Errorf("expected no NLU calls, got %d", len(nlu.Requests))
	}
}

func TestRelay_GeneratesUserIDWhenMissing(t *testing.T) {
	nlu := &mocks.MockNLUClient{}
	service := newTestService(nlu)

	if _, err := service.Relay(context.Background(), chatRequest("", "hello")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if nlu.Requests[0].UserID == "" {
		t.Error("expected a generated user id")
	}
}

func TestRelay_PropagatesNLUError(t *testing.T) {
	nluErr := errors.New("engine down")
	nlu := &mocks.MockNLUClient{
		PostTextFunc: func(ctx context.Context, req ports.TextRequest) (*domain.NLUReply, error) {
			return nil, nluErr
		},
	}

	_, err := newTestService(nlu).Relay(context.Background(), chatRequest("u", "hello"))
	if !errors.Is(err, nluErr) {
		t.Errorf("expected NLU error, got %v", err)
	}
}
