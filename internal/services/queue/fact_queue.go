package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storyforge/narrative-engine/pkg/queue"
)

// factsKey is the global list every API instance pushes to and every
// worker pops from. Per-session ordering holds because one worker
// processes a request to completion before popping the next.
const factsKey = "facts"

// FactQueue manages the global queue of inbound facts. It owns its
// Redis connection; callers close it when the queue is done.
type FactQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewFactQueue dials Redis at the given URL and verifies the
// connection before returning the queue.
func NewFactQueue(redisURL string, logger *slog.Logger) (*FactQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for fact queue", "url", redisURL)

	return &FactQueue{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (q *FactQueue) Close() error {
	return q.rdb.Close()
}

// Redis exposes the underlying connection for consumers that share it,
// such as the event broadcaster.
func (q *FactQueue) Redis() *redis.Client {
	return q.rdb
}

// Enqueue adds a request to the end of the global facts queue.
func (q *FactQueue) Enqueue(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.rdb.RPush(ctx, factsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue fact: %w", err)
	}

	q.logger.Debug("Fact enqueued",
		"request_id", req.RequestID,
		"session_id", req.SessionID,
		"fact_type", req.Fact.Type)
	return nil
}

// Dequeue removes and returns the next request. Returns nil when the
// queue is empty.
func (q *FactQueue) Dequeue(ctx context.Context) (*queue.Request, error) {
	result, err := q.rdb.LPop(ctx, factsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue fact: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeue blocks until a request is available or the timeout
// elapses. Returns nil on timeout.
func (q *FactQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.rdb.BLPop(ctx, timeout, factsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue fact: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of requests waiting on the queue.
func (q *FactQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.rdb.LLen(ctx, factsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
