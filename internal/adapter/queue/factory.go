package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/pkg/config"
)

const (
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
	DriverRedis    = "redis"
)

// New connects to the backend selected by cfg.Queue.Driver
func New(cfg *config.Config, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Queue.Driver {
	case DriverNATS:
		return NewNATSQueue(cfg.NATS, log)
	case DriverRabbitMQ:
		return NewRabbitMQQueue(cfg.RabbitMQ.URL, log)
	case DriverRedis:
		return NewRedisQueue(cfg.Redis.URL, log)
	default:
		return nil, fmt.Errorf("queue: unknown driver %q", cfg.Queue.Driver)
	}
}
