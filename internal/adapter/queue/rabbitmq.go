package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const rabbitRetryWait = 5 * time.Second

// amqpChannel is the part of *amqp.Channel the queue uses
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

// RabbitMQQueue implements the MessageQueue interface using RabbitMQ.
// Each subject is a durable queue bound to the default exchange. A closed
// channel is reopened on the live connection; a lost connection is redialed.
type RabbitMQQueue struct {
	conn      *amqp.Connection
	channel   amqpChannel
	open      func() (amqpChannel, error)
	url       string
	handlers  map[string]func([]byte) error
	closed    bool
	retryWait time.Duration
	mu        sync.RWMutex
	log       *zap.Logger
}

// NewRabbitMQQueue creates a new RabbitMQ message queue adapter
func NewRabbitMQQueue(url string, log *zap.Logger) (MessageQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	q := &RabbitMQQueue{
		conn:      conn,
		url:       url,
		handlers:  make(map[string]func([]byte) error),
		retryWait: rabbitRetryWait,
		log:       log,
	}
	q.open = q.openChannel

	if err := q.start(); err != nil {
		conn.Close()
		return nil, err
	}

	go q.monitorConnection(conn)

	log.Info("Successfully connected to RabbitMQ")
	return q, nil
}

// openChannel must be called with q.mu held
func (q *RabbitMQQueue) openChannel() (amqpChannel, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (q *RabbitMQQueue) start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, err := q.open()
	if err != nil {
		return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	q.attachChannel(ch)
	return nil
}

// attachChannel must be called with q.mu held
func (q *RabbitMQQueue) attachChannel(ch amqpChannel) {
	q.channel = ch
	// Registered before returning so a close right after open is not missed
	notify := ch.NotifyClose(make(chan *amqp.Error, 1))
	go q.watchChannel(ch, notify)
}

func (q *RabbitMQQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	if _, err := declareQueue(q.channel, subject); err != nil {
		return err
	}

	err := q.channel.PublishWithContext(ctx,
		"", subject, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         data,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}

	return nil
}

func (q *RabbitMQQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if err := q.consume(subject, handler); err != nil {
		return err
	}
	q.handlers[subject] = handler
	return nil
}

// consume must be called with q.mu held
func (q *RabbitMQQueue) consume(subject string, handler func([]byte) error) error {
	if q.channel == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	queue, err := declareQueue(q.channel, subject)
	if err != nil {
		return err
	}

	msgs, err := q.channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				q.log.Error("Error processing RabbitMQ message",
					zap.String("queue", subject),
					zap.Error(err),
				)
				// Poison messages are dropped rather than redelivered forever
				msg.Nack(false, false)
				continue
			}
			msg.Ack(false)
		}
	}()

	q.log.Info("Subscribed to RabbitMQ queue", zap.String("queue", subject))
	return nil
}

// resubscribe must be called with q.mu held
func (q *RabbitMQQueue) resubscribe() {
	for subject, handler := range q.handlers {
		if err := q.consume(subject, handler); err != nil {
			q.log.Error("Failed to resubscribe", zap.String("queue", subject), zap.Error(err))
		}
	}
}

func declareQueue(ch amqpChannel, name string) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	return queue, nil
}

func (q *RabbitMQQueue) Ping(ctx context.Context) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.connectionLost() {
		return fmt.Errorf("rabbitmq: connection closed")
	}
	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("rabbitmq: channel closed")
	}
	return nil
}

// connectionLost must be called with q.mu held
func (q *RabbitMQQueue) connectionLost() bool {
	return q.conn != nil && q.conn.IsClosed()
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// watchChannel reopens ch after a channel-level exception, such as a
// PRECONDITION_FAILED from a queue declared with other arguments. A
// connection loss is left to monitorConnection.
func (q *RabbitMQQueue) watchChannel(ch amqpChannel, notify chan *amqp.Error) {
	reason, ok := <-notify
	if !ok || reason == nil {
		return
	}
	q.log.Warn("RabbitMQ channel closed, reopening...",
		zap.Int("code", reason.Code),
		zap.String("reason", reason.Reason),
	)

	for {
		q.mu.Lock()
		if q.closed || q.channel != ch || q.connectionLost() {
			q.mu.Unlock()
			return
		}
		newCh, err := q.open()
		if err == nil {
			q.attachChannel(newCh)
			q.resubscribe()
		}
		q.mu.Unlock()

		if err == nil {
			q.log.Info("RabbitMQ channel reopened")
			return
		}
		q.log.Error("Failed to reopen RabbitMQ channel", zap.Error(err))
		time.Sleep(q.retryWait)
	}
}

func (q *RabbitMQQueue) monitorConnection(conn *amqp.Connection) {
	for {
		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || reason == nil {
			return
		}
		q.log.Warn("RabbitMQ connection lost, reconnecting...", zap.String("reason", reason.Reason))

		for {
			time.Sleep(q.retryWait)

			q.mu.RLock()
			closed := q.closed
			q.mu.RUnlock()
			if closed {
				return
			}

			newConn, err := amqp.Dial(q.url)
			if err != nil {
				q.log.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
				continue
			}

			q.mu.Lock()
			q.conn = newConn
			ch, err := q.open()
			if err != nil {
				q.mu.Unlock()
				newConn.Close()
				continue
			}
			q.attachChannel(ch)
			q.resubscribe()
			q.mu.Unlock()

			q.log.Info("Successfully reconnected to RabbitMQ")
			conn = newConn
			break
		}
	}
}
