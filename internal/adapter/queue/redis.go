package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix   = "queue:"
	redisPopTimeout  = 2 * time.Second
	redisRetryPeriod = time.Second
)

// RedisQueue implements MessageQueue on Redis lists: LPUSH to publish,
// BRPOP to consume, so each message reaches exactly one consumer.
type RedisQueue struct {
	client *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

func NewRedisQueue(url string, log *zap.Logger) (MessageQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis")
	return NewRedisQueueFromClient(client, log), nil
}

// NewRedisQueueFromClient wraps an existing client; Close closes it
func NewRedisQueueFromClient(client *redis.Client, log *zap.Logger) *RedisQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisQueue{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

func (q *RedisQueue) key(subject string) string {
	return redisKeyPrefix + subject
}

func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if q.ctx.Err() != nil {
		return ErrClosed
	}
	if err := q.client.LPush(ctx, q.key(subject), data).Err(); err != nil {
		return fmt.Errorf("redis: lpush: %w", err)
	}
	return nil
}

func (q *RedisQueue) Subscribe(subject string, handler func(data []byte) error) error {
	if q.ctx.Err() != nil {
		return ErrClosed
	}

	q.wg.Add(1)
	go q.consume(subject, handler)

	q.log.Info("Subscribed to Redis queue", zap.String("queue", subject))
	return nil
}

func (q *RedisQueue) consume(subject string, handler func([]byte) error) {
	defer q.wg.Done()
	key := q.key(subject)

	for {
		if q.ctx.Err() != nil {
			return
		}

		res, err := q.client.BRPop(q.ctx, redisPopTimeout, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if q.ctx.Err() != nil {
				return
			}
			q.log.Error("Redis pop failed", zap.String("queue", subject), zap.Error(err))
			select {
			case <-q.ctx.Done():
				return
			case <-time.After(redisRetryPeriod):
			}
			continue
		}

		// BRPOP answers [key, value]
		if len(res) != 2 {
			continue
		}
		if err := handler([]byte(res[1])); err != nil {
			q.log.Error("Error processing message", zap.String("queue", subject), zap.Error(err))
		}
	}
}

// Len reports how many messages wait on the subject
func (q *RedisQueue) Len(ctx context.Context, subject string) (int64, error) {
	return q.client.LLen(ctx, q.key(subject)).Result()
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	q.cancel()
	q.wg.Wait()
	return q.client.Close()
}
