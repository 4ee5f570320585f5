package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

// MockOrderSubmitter is a mock implementation of OrderSubmitter interface
type MockOrderSubmitter struct {
	SubmitFunc func(ctx context.Context, order domain.OrderRecord) (*domain.SubmissionReceipt, error)
	Submitted  []domain.OrderRecord
}

func (m *MockOrderSubmitter) Submit(ctx context.Context, order domain.OrderRecord) (*domain.SubmissionReceipt, error) {
	m.Submitted = append(m.Submitted, order)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, order)
	}
	return &domain.SubmissionReceipt{Queue: "test-queue", EnqueuedAt: time.Now()}, nil
}

// MockDialogService is a mock implementation of DialogService interface
type MockDialogService struct {
	DispatchFunc func(ctx context.Context, req *domain.IntentRequest) (domain.Response, error)
}

func (m *MockDialogService) Dispatch(ctx context.Context, req *domain.IntentRequest) (domain.Response, error) {
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, req)
	}
	return domain.Response{Action: domain.Delegate{Slots: req.CurrentIntent.Slots}}, nil
}

// MockNLUClient is a mock implementation of NLUClient interface
type MockNLUClient struct {
	PostTextFunc func(ctx context.Context, req ports.TextRequest) (*domain.NLUReply, error)
	Requests     []ports.TextRequest
}

func (m *MockNLUClient) PostText(ctx context.Context, req ports.TextRequest) (*domain.NLUReply, error) {
	m.Requests = append(m.Requests, req)
	if m.PostTextFunc != nil {
		return m.PostTextFunc(ctx, req)
	}
	return &domain.NLUReply{Message: "What city are you looking to dine in?"}, nil
}

// MockChatService is a mock implementation of ChatService interface
type MockChatService struct {
	RelayFunc func(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
}

func (m *MockChatService) Relay(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if m.RelayFunc != nil {
		return m.RelayFunc(ctx, req)
	}
	return &domain.ChatResponse{}, nil
}
