package redisdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

type Sessions struct {
	client *redis.Client
}

var _ auth.SessionStore = (*Sessions)(nil)

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

func sessionKey(id string) string { return "session:" + id }

func (s *Sessions) Save(ctx context.Context, sess auth.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err()
}

func (s *Sessions) Get(ctx context.Context, id string) (auth.Session, error) {
	var sess auth.Session
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return sess, auth.ErrSessionNotFound
	}
	if err != nil {
		return sess, err
	}
	err = json.Unmarshal(data, &sess)
	return sess, errors.Wrap(err, "decoding session")
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}
