// Package infra Redis 基础设施初始化
package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	cacheredis "secbot-fulfillment/internal/shared/cache/redis"
)

// RedisInfra Redis 基础设施（概念缓存）
type RedisInfra struct {
	client *redis.Client

	// ConceptCache 概念查找缓存
	ConceptCache *cacheredis.Store
}

// NewRedisInfra 从 URL 创建 Redis 基础设施
func NewRedisInfra(redisURL string) (*RedisInfra, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Infra] Connected to %s", opts.Addr)

	return &RedisInfra{
		client:       client,
		ConceptCache: cacheredis.NewStoreFromClient(client),
	}, nil
}

// Close 关闭 Redis 连接
func (r *RedisInfra) Close() error {
	return r.client.Close()
}
