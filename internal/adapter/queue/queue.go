package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing on a queue that has been closed
var ErrClosed = errors.New("queue: closed")

// MessageQueue defines the interface for a message queue adapter.
// Subjects name durable queues; every message is delivered to one consumer.
type MessageQueue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Ping(ctx context.Context) error
	Close() error
}
