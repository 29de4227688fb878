package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fileshelf/backend/pkg/logger"
)

const (
	// FileQueue carries thumbnail jobs for uploaded images.
	FileQueue = "fileQueue"
	// UserQueue carries welcome jobs for registered users.
	UserQueue = "userQueue"

	popTimeout = 5 * time.Second
)

// Handler processes one dequeued payload. A non-nil error fails the job; the
// queue applies no retry policy of its own beyond redelivery semantics, so
// handlers must be idempotent.
type Handler func(ctx context.Context, payload []byte) error

// Queue is a Redis-list-backed job queue. Producers LPUSH JSON payloads;
// consumers block on BRPOP, so a job is delivered to a single consumer.
type Queue struct {
	rdb  *redis.Client
	name string
	key  string
}

func New(rdb *redis.Client, name string) *Queue {
	return &Queue{rdb: rdb, name: name, key: "queue:" + name}
}

func (q *Queue) Name() string {
	return q.name
}

// Enqueue pushes a job payload. Callers treat this as fire-and-forget: the
// request path completes before the job is processed.
func (q *Queue) Enqueue(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling job payload: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// Consume dispatches jobs to handler until ctx is cancelled. Handler failures
// are logged and the loop continues; a job observed by a handler is consumed
// whether it succeeds or not.
func (q *Queue) Consume(ctx context.Context, handler Handler) error {
	for {
		result, err := q.rdb.BRPop(ctx, popTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("queue_pop_failed", err, map[string]interface{}{"queue": q.name})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}
		payload := []byte(result[1])

		if err := handler(ctx, payload); err != nil {
			logger.Error("job_failed", err, map[string]interface{}{
				"queue":   q.name,
				"payload": result[1],
			})
			continue
		}
		logger.Info("job_done", map[string]interface{}{"queue": q.name})
	}
}
