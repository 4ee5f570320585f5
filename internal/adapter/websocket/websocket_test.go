package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/mocks"
)

func TestDecodeFrame_ChatDocument(t *testing.T) {
	req := decodeFrame([]byte(`{"messages":[{"type":"unstructured","unstructured":{"text":"hello"}}]}`))

	if req.FirstText() != "hello" {
		t.Errorf("expected hello, got %q", req.FirstText())
	}
}

func TestDecodeFrame_BareText(t *testing.T) {
	req := decodeFrame([]byte("  book a table in new york \n"))

	if req.FirstText() != "book a table in new york" {
		t.Errorf("unexpected text %q", req.FirstText())
	}
	if req.Messages[0].Type != domain.MessageTypeUnstructured {
		t.Errorf("expected unstructured message, got %q", req.Messages[0].Type)
	}
}

func TestDecodeFrame_JSONWithoutMessages(t *testing.T) {
	req := decodeFrame([]byte(`{"foo":"bar"}`))

	if req.FirstText() != `{"foo":"bar"}` {
		t.Errorf("expected raw payload as text, got %q", req.FirstText())
	}
}

func TestHub_PublishOrderReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	order := domain.OrderRecord{Location: "New York", Cuisine: "italian"}
	if err := hub.PublishOrder(order); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case data := <-client.send:
		var got domain.OrderRecord
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if got.Location != "New York" || got.Cuisine != "italian" {
			t.Errorf("unexpected order %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}

	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestChatStream_RelayFailureAnswersFallback(t *testing.T) {
	chatSvc := &mocks.MockChatService{
		RelayFunc: func(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
			return nil, errors.New("nlu: engine unavailable")
		},
	}
	handler := NewChatStreamHandler(chatSvc, zap.NewNop())

	out, err := handler.answer(context.Background(), "user-1", []byte("table for two"))
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	var resp domain.ChatResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("invalid reply: %v", err)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("expected one message, got %s", out)
	}
	msg := resp.Messages[0]
	if msg.Unstructured.Text != domain.ChatFallbackReply || msg.Type != domain.MessageTypeUnstructured {
		t.Errorf("expected fallback reply, got %+v", msg)
	}
	if msg.Unstructured.Timestamp == "" {
		t.Error("expected a timestamp on the fallback reply")
	}
}

func TestChatStream_RelaysWithConnectionUser(t *testing.T) {
	var got *domain.ChatRequest
	chatSvc := &mocks.MockChatService{
		RelayFunc: func(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
			got = req
			return domain.NewChatReply("What city are you looking to dine in?", time.Now()), nil
		},
	}
	handler := NewChatStreamHandler(chatSvc, zap.NewNop())

	out, err := handler.answer(context.Background(), "conn-42", []byte("hi"))
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if got == nil || got.UserID != "conn-42" || got.FirstText() != "hi" {
		t.Errorf("unexpected relay request %+v", got)
	}

	var resp domain.ChatResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("invalid reply: %v", err)
	}
	if resp.Messages[0].Unstructured.Text != "What city are you looking to dine in?" {
		t.Errorf("unexpected reply %s", out)
	}
}
