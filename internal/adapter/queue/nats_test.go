package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/pkg/config"
)

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		t.Fatalf("failed to create nats server: %v", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

func newTestNATSQueue(t *testing.T, url string) MessageQueue {
	t.Helper()

	q, err := NewNATSQueue(config.NATSConfig{
		URL:           url,
		MaxReconnects: 1,
		ReconnectWait: 100 * time.Millisecond,
		Storage:       "file",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return q
}

func waitFor(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestNATSQueue_PublishedBeforeSubscribeIsDelivered(t *testing.T) {
	srv := runJetStreamServer(t)

	producer := newTestNATSQueue(t, srv.ClientURL())
	if err := producer.Publish(context.Background(), "ChatBotHw1", []byte(`{"Location":"New York"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	producer.Close()

	// a consumer that connects later still gets the order
	consumer := newTestNATSQueue(t, srv.ClientURL())
	defer consumer.Close()

	received := make(chan []byte, 1)
	err := consumer.Subscribe("ChatBotHw1", func(data []byte) error {
		received <- data
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if got := string(waitFor(t, received)); got != `{"Location":"New York"}` {
		t.Errorf("unexpected payload %s", got)
	}
}

func TestNATSQueue_AckedMessageIsNotRedelivered(t *testing.T) {
	srv := runJetStreamServer(t)
	q := newTestNATSQueue(t, srv.ClientURL())

	received := make(chan []byte, 4)
	if err := q.Subscribe("orders", func(data []byte) error {
		received <- data
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := q.Publish(context.Background(), "orders", []byte("one")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	waitFor(t, received)
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	again := newTestNATSQueue(t, srv.ClientURL())
	defer again.Close()

	second := make(chan []byte, 1)
	if err := again.Subscribe("orders", func(data []byte) error {
		second <- data
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	select {
	case data := <-second:
		t.Errorf("acked message redelivered: %s", data)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestNATSQueue_HandlerErrorKeepsConsuming(t *testing.T) {
	srv := runJetStreamServer(t)
	q := newTestNATSQueue(t, srv.ClientURL())
	defer q.Close()

	var mu sync.Mutex
	var seen []string
	done := make(chan []byte, 1)
	if err := q.Subscribe("orders", func(data []byte) error {
		mu.Lock()
		seen = append(seen, string(data))
		mu.Unlock()
		if string(data) == "bad" {
			return errors.New("decode failed")
		}
		done <- data
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	ctx := context.Background()
	if err := q.Publish(ctx, "orders", []byte("bad")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := q.Publish(ctx, "orders", []byte("good")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if got := string(waitFor(t, done)); got != "good" {
		t.Errorf("expected good, got %s", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Errorf("expected the bad message to be handled once, saw %v", seen)
	}
}

func TestNATSQueue_PingAndClose(t *testing.T) {
	srv := runJetStreamServer(t)
	q := newTestNATSQueue(t, srv.ClientURL())

	if err := q.Ping(context.Background()); err != nil {
		t.Fatalf("expected healthy ping, got %v", err)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := q.Publish(context.Background(), "orders", []byte("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}

func TestStreamName(t *testing.T) {
	tests := map[string]string{
		"ChatBotHw1":    "CHATBOTHW1",
		"orders.dining": "ORDERS_DINING",
	}
	for subject, want := range tests {
		if got := streamName(subject); got != want {
			t.Errorf("streamName(%q) = %q, want %q", subject, got, want)
		}
	}
}
