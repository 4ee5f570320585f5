package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/adapter/queue"
	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
)

// DefaultQueueName is the queue downstream fulfillment reads orders from
const DefaultQueueName = "ChatBotHw1"

// ErrSubmission wraps any failure to hand an order to the queue
var ErrSubmission = errors.New("order submission failed")

// Submitter enqueues completed orders. It does not de-duplicate: submitting
// the same order twice enqueues two messages.
type Submitter struct {
	mq        queue.MessageQueue
	queueName string
	now       func() time.Time
	log       *zap.Logger
}

func NewSubmitter(mq queue.MessageQueue, queueName string, log *zap.Logger) *Submitter {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Submitter{
		mq:        mq,
		queueName: queueName,
		now:       time.Now,
		log:       log,
	}
}

func (s *Submitter) Submit(ctx context.Context, order domain.OrderRecord) (*domain.SubmissionReceipt, error) {
	ctx, span := otel.Tracer("dining-concierge/order").Start(ctx, "order.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("order.queue", s.queueName))

	payload, err := json.Marshal(order)
	if err != nil {
		telemetry.OrdersSubmittedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: encode: %v", ErrSubmission, err)
	}

	if err := s.mq.Publish(ctx, s.queueName, payload); err != nil {
		telemetry.OrdersSubmittedTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "enqueue failed")
		s.log.Error("Failed to enqueue order",
			zap.String("queue", s.queueName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	telemetry.OrdersSubmittedTotal.WithLabelValues("ok").Inc()
	return &domain.SubmissionReceipt{
		Queue:      s.queueName,
		Bytes:      len(payload),
		EnqueuedAt: s.now(),
	}, nil
}
