package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/pkg/config"
)

// consumerGroup names the connection and the durable consumer shared by
// every instance, so each message is handled once
const consumerGroup = "dining-concierge"

const (
	natsPublishTimeout = 5 * time.Second
	natsSetupTimeout   = 10 * time.Second
	natsDrainTimeout   = 10 * time.Second
)

// NATSQueue implements MessageQueue on JetStream. Every subject is backed by
// a work-queue stream, so messages published before anyone subscribes are
// kept until a consumer acks them.
type NATSQueue struct {
	conn      *nats.Conn
	js        jetstream.JetStream
	storage   jetstream.StorageType
	maxAge    time.Duration
	streams   map[string]jetstream.Stream
	consumers []jetstream.ConsumeContext
	closed    chan struct{}
	mu        sync.Mutex
	log       *zap.Logger
}

func NewNATSQueue(cfg config.NATSConfig, log *zap.Logger) (MessageQueue, error) {
	closed := make(chan struct{})
	nc, err := nats.Connect(cfg.URL,
		nats.Name(consumerGroup),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DrainTimeout(natsDrainTimeout),
		nats.ClosedHandler(func(_ *nats.Conn) {
			close(closed)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open JetStream context: %w", err)
	}

	storage := jetstream.FileStorage
	if cfg.Storage == "memory" {
		storage = jetstream.MemoryStorage
	}

	log.Info("Successfully connected to NATS JetStream", zap.String("url", cfg.URL))
	return &NATSQueue{
		conn:    nc,
		js:      js,
		storage: storage,
		maxAge:  cfg.StreamMaxAge,
		streams: make(map[string]jetstream.Stream),
		closed:  closed,
		log:     log,
	}, nil
}

// streamName maps a subject to a valid stream name
func streamName(subject string) string {
	r := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return strings.ToUpper(r.Replace(subject))
}

func (q *NATSQueue) ensureStream(ctx context.Context, subject string) (jetstream.Stream, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if s, ok := q.streams[subject]; ok {
		return s, nil
	}

	s, err := q.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName(subject),
		Subjects:  []string{subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   q.storage,
		MaxAge:    q.maxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("nats: ensure stream for %s: %w", subject, err)
	}

	q.streams[subject] = s
	return s, nil
}

func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if q.conn.IsClosed() {
		return ErrClosed
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsPublishTimeout)
		defer cancel()
	}

	if _, err := q.ensureStream(ctx, subject); err != nil {
		return err
	}
	// The ack means the stream stored the message
	if _, err := q.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("nats: publish: %w", err)
	}
	return nil
}

func (q *NATSQueue) Subscribe(subject string, handler func(data []byte) error) error {
	if q.conn.IsClosed() {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), natsSetupTimeout)
	defer cancel()

	stream, err := q.ensureStream(ctx, subject)
	if err != nil {
		return err
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       consumerGroup,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: subject,
	})
	if err != nil {
		return fmt.Errorf("nats: create consumer for %s: %w", subject, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(msg.Data()); err != nil {
			q.log.Error("Error processing message", zap.String("subject", subject), zap.Error(err))
			// Poison messages are dropped rather than redelivered forever
			if err := msg.Term(); err != nil {
				q.log.Warn("Failed to terminate message", zap.Error(err))
			}
			return
		}
		if err := msg.Ack(); err != nil {
			q.log.Warn("Failed to ack message", zap.String("subject", subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("nats: consume %s: %w", subject, err)
	}

	q.mu.Lock()
	q.consumers = append(q.consumers, cc)
	q.mu.Unlock()

	q.log.Info("Subscribed to JetStream subject", zap.String("subject", subject))
	return nil
}

func (q *NATSQueue) Ping(ctx context.Context) error {
	if status := q.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats: connection status %v", status)
	}
	if _, err := q.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("nats: jetstream unavailable: %w", err)
	}
	return nil
}

func (q *NATSQueue) Close() error {
	q.mu.Lock()
	for _, cc := range q.consumers {
		cc.Stop()
	}
	q.consumers = nil
	q.mu.Unlock()

	if q.conn.IsClosed() {
		return nil
	}
	// Drain lets in-flight handlers finish and ack before the connection closes
	if err := q.conn.Drain(); err != nil {
		return fmt.Errorf("nats: drain: %w", err)
	}
	select {
	case <-q.closed:
	case <-time.After(natsDrainTimeout):
		q.conn.Close()
	}
	return nil
}
