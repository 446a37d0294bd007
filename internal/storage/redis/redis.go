package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"account_service/internal/storage"

	"github.com/redis/go-redis/v9"
)

// RedisRepo backs the cookie-session variant of login. Bearer tokens live in
// Postgres; only short-lived web sessions go through Redis.
type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (r *RedisRepo) SaveSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	const op = "storage.redis.SaveSession"

	err := r.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) UserIDBySession(ctx context.Context, sessionID string) (int64, error) {
	const op = "storage.redis.UserIDBySession"

	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, storage.ErrSessionNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return userID, nil
}

func (r *RedisRepo) DeleteSession(ctx context.Context, sessionID string) error {
	const op = "storage.redis.DeleteSession"

	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}
