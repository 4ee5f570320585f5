//go:build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

func TestRedisQueue_Integration_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	}()

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis connection string: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	mq, err := NewRedisQueue(url, logger)
	if err != nil {
		t.Fatalf("Failed to connect queue: %v", err)
	}
	defer mq.Close()

	received := make(chan []byte, 1)
	if err := mq.Subscribe("ChatBotHw1", func(data []byte) error {
		received <- data
		return nil
	}); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	payload := []byte(`{"Location":"new york","Cuisine":"italian"}`)
	if err := mq.Publish(ctx, "ChatBotHw1", payload); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(payload) {
			t.Errorf("expected %s, got %s", payload, got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
