package cache

import (
	"context"
	"fmt"

	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisStore caches responses in a shared redis instance, so repeated
// conversions of the same recipe across processes skip the upstream call.
type redisStore struct {
	client *redis.Client
	config *config.CacheConfig
}

func newRedisStore(cfg *config.CacheConfig) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	common.LogInfo("redis cache initialized",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.TTL),
	)

	return &redisStore{
		client: client,
		config: cfg,
	}, nil
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, prompt string) (string, bool) {
	data, err := s.client.Get(ctx, promptKey(prompt)).Result()
	if err != nil {
		if err != redis.Nil {
			common.LogWarn("redis cache read failed", zap.Error(err))
		}
		return "", false
	}
	return data, true
}

// Set implements Store.
func (s *redisStore) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, promptKey(prompt), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
