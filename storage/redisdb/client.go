// Package redisdb holds the redis backed queue, invite receipts & sessions.
package redisdb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis with short timeouts.
// url is either a redis:// URL or a bare host:port address.
func NewClient(url string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(url, "://") {
		var err error
		if opts, err = redis.ParseURL(url); err != nil {
			return nil, errors.Wrap(err, "parsing redis url")
		}
	} else {
		opts = &redis.Options{Addr: url}
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 1 * time.Second
	opts.WriteTimeout = 1 * time.Second
	return redis.NewClient(opts), nil
}

// Healthy verifies redis connectivity.
func Healthy(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return errors.New("redis client not configured")
	}
	return client.Ping(ctx).Err()
}
