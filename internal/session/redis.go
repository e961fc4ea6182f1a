package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every session as a Redis hash. Each session expires after the TTL since its last write.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "session:", ttl: ttl}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error in client.Ping call: %w", err)
	}

	return client, nil
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

// Put implements the Store interface.
func (r *RedisStore) Put(ctx context.Context, sessionID, key, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(sessionID), key, value)
		pipe.Expire(ctx, r.key(sessionID), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error in client.TxPipelined call: %w", err)
	}
	return nil
}

// Get implements the Store interface.
func (r *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := r.client.HGet(ctx, r.key(sessionID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error in client.HGet call: %w", err)
	}
	return value, nil
}

// Forget implements the Store interface.
func (r *RedisStore) Forget(ctx context.Context, sessionID, key string) error {
	if err := r.client.HDel(ctx, r.key(sessionID), key).Err(); err != nil {
		return fmt.Errorf("error in client.HDel call: %w", err)
	}
	return nil
}

// Rename implements the Store interface. The expiry of the session is kept.
func (r *RedisStore) Rename(ctx context.Context, oldID, newID string) error {
	exists, err := r.client.Exists(ctx, r.key(oldID)).Result()
	if err != nil {
		return fmt.Errorf("error in client.Exists call: %w", err)
	}
	if exists == 0 {
		return nil
	}

	if err := r.client.Rename(ctx, r.key(oldID), r.key(newID)).Err(); err != nil {
		return fmt.Errorf("error in client.Rename call: %w", err)
	}
	return nil
}

// Delete implements the Store interface.
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("error in client.Del call: %w", err)
	}
	return nil
}
