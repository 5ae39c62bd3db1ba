package redisdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
)

// Receipts stores invite delivery receipts & locks under the invite: prefix.
type Receipts struct {
	client *redis.Client
}

var _ invite.ReceiptStore = (*Receipts)(nil)

func NewReceipts(client *redis.Client) *Receipts {
	return &Receipts{client: client}
}

func lockKey(key string) string { return "invite:lock:" + key }
func sentKey(key string) string { return "invite:sent:" + key }

func (r *Receipts) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, lockKey(key), 1, ttl).Result()
}

func (r *Receipts) Unlock(ctx context.Context, key string) error {
	return r.client.Del(ctx, lockKey(key)).Err()
}

func (r *Receipts) Sent(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, sentKey(key)).Result()
	return n > 0, err
}

func (r *Receipts) MarkSent(ctx context.Context, key string, at time.Time) error {
	return r.client.Set(ctx, sentKey(key), at.Format(time.RFC3339), 0).Err()
}
