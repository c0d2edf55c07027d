package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "trademate:preview:"

// RedisStore shares previews between server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, address string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
	}
	slog.Info("connected to redis preview store", "address", address, "ttl", ttl)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Put(ctx context.Context, pdf []byte) (string, error) {
	id := newID()
	if err := r.client.Set(ctx, keyPrefix+id, pdf, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store preview: %w", err)
	}
	return id, nil
}

func (r *RedisStore) Take(ctx context.Context, id string) ([]byte, error) {
	pdf, err := r.client.GetDel(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preview: %w", err)
	}
	return pdf, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
