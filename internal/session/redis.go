package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "notehub:session:"

// RedisStore keeps one JSON value per session, expiring with the session.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return r.rdb.Set(ctx, redisKey(s.ID), b, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	b, err := r.rdb.Get(ctx, redisKey(id)).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}

	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, redisKey(id)).Result()

	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
