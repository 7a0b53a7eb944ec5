package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueExportJob(ctx context.Context, job model.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal export job: %w", err)
	}

	return p.client.LPush(ctx, p.cfg.Redis.ExportQueue, data).Err()
}
