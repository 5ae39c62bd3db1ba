package redisdb

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

const defaultQueueKey = "campus:queue"

// Queue implements a simple Redis list-backed queue.
type Queue struct {
	client *redis.Client
	key    string
	logger core.Logger
}

var _ core.Queue = (*Queue)(nil)

// NewQueue builds a queue using LPUSH/BRPOP semantics.
func NewQueue(client *redis.Client, key string, logger core.Logger) *Queue {
	if key == "" {
		key = defaultQueueKey
	}
	return &Queue{client: client, key: key, logger: logger}
}

// Publish enqueues a message.
func (q *Queue) Publish(ctx context.Context, msg core.Message) error {
	return q.client.LPush(ctx, q.key, serialize(msg)).Err()
}

// Consume streams messages using BRPOP until ctx is done.
func (q *Queue) Consume(ctx context.Context) (<-chan core.Message, error) {
	out := make(chan core.Message)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if err != redis.Nil {
					q.logger.Warn("queue pop failed", err, map[string]interface{}{"key": q.key})
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			select {
			case out <- deserialize(res[1]):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// serialize stores messages as Type|Body.
func serialize(msg core.Message) string {
	return msg.Type + "|" + string(msg.Body)
}

func deserialize(s string) core.Message {
	typ, body, found := strings.Cut(s, "|")
	if !found {
		return core.Message{Body: []byte(s)}
	}
	return core.Message{Type: typ, Body: []byte(body)}
}
