package order

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/adapter/queue"
	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
)

// Consumer reads orders back off the queue and reports them. Fulfillment
// itself happens in a separate system.
type Consumer struct {
	mq        queue.MessageQueue
	queueName string
	handle    func(domain.OrderRecord) error
	log       *zap.Logger
}

// NewConsumer creates a consumer; handle may be nil to only log orders
func NewConsumer(mq queue.MessageQueue, queueName string, handle func(domain.OrderRecord) error, log *zap.Logger) *Consumer {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Consumer{
		mq:        mq,
		queueName: queueName,
		handle:    handle,
		log:       log,
	}
}

func (c *Consumer) Start() error {
	if err := c.mq.Subscribe(c.queueName, c.process); err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.queueName, err)
	}
	c.log.Info("Order consumer started", zap.String("queue", c.queueName))
	return nil
}

func (c *Consumer) process(data []byte) error {
	var order domain.OrderRecord
	if err := json.Unmarshal(data, &order); err != nil {
		telemetry.OrdersConsumedTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("decode order: %w", err)
	}

	c.log.Info("Order received",
		zap.String("location", order.Location),
		zap.String("cuisine", order.Cuisine),
		zap.String("date", order.Date),
		zap.String("time", order.Time),
		zap.String("people", order.NumberOfPeople),
	)

	if c.handle != nil {
		if err := c.handle(order); err != nil {
			telemetry.OrdersConsumedTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	telemetry.OrdersConsumedTotal.WithLabelValues("ok").Inc()
	return nil
}
