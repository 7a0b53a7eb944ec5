package queue

import (
	"context"
	"fmt"
	"time"

	"school-portal-gateway/internal/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient is shared by the export queue and the session store.
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// FromClient wraps an already configured client without pinging it.
func FromClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{client: rdb}
}
