package health

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/mocks"
)

func TestReady_AllHealthy(t *testing.T) {
	service := NewService("v-test", zap.NewNop())
	service.RegisterPinger("queue", mocks.NewMockMessageQueue())

	resp := service.Ready(context.Background())

	if !resp.Ready || resp.Status != StatusHealthy {
		t.Errorf("expected ready and healthy, got %+v", resp)
	}
	if resp.Checks["queue"].Message != "connection ok" {
		t.Errorf("unexpected check result %+v", resp.Checks["queue"])
	}
}

func TestReady_QueueDown(t *testing.T) {
	mq := mocks.NewMockMessageQueue()
	mq.PingFunc = func(ctx context.Context) error {
		return errors.New("connection closed")
	}

	service := NewService("v-test", zap.NewNop())
	service.RegisterPinger("queue", mq)

	resp := service.Ready(context.Background())

	if resp.Ready {
		t.Error("expected not ready")
	}
	if resp.Checks["queue"].Status != StatusUnhealthy {
		t.Errorf("expected unhealthy queue, got %s", resp.Checks["queue"].Status)
	}
}

func TestFiberHandler_ReadyStatusCodes(t *testing.T) {
	mq := mocks.NewMockMessageQueue()
	service := NewService("v-test", zap.NewNop())
	service.RegisterPinger("queue", mq)

	app := fiber.New()
	NewFiberHandler(service).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	mq.PingFunc = func(ctx context.Context) error { return errors.New("down") }
	resp, err = app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/health/live", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected liveness to stay 200, got %d", resp.StatusCode)
	}
}
