// Package inmem holds the in-process implementations of the queue, the invite receipts & the sessions,
// used when no redis is configured (local development & tests).
package inmem

import (
	"context"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

// Queue is a minimal channel-backed queue for dev/testing.
type Queue struct {
	ch chan core.Message
}

var _ core.Queue = (*Queue)(nil)

// NewQueue creates a bounded in-memory queue.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan core.Message, size)}
}

// Publish enqueues a message.
func (q *Queue) Publish(ctx context.Context, msg core.Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *Queue) Consume(ctx context.Context) (<-chan core.Message, error) {
	out := make(chan core.Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-q.ch:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Len returns the number of messages waiting.
func (q *Queue) Len() int { return len(q.ch) }
