// Package redis 基于 Redis 的 ConceptCache 实现
//
// 值为概念文档的 JSON 序列化，TTL 固定。任何 Redis 错误都
// 按未命中处理并记日志，查找路径永远可以退回 MongoDB。
package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"secbot-fulfillment/internal/shared/cache"
	"secbot-fulfillment/internal/shared/model"
)

// KeyConceptLookup 概念查找缓存键前缀
const KeyConceptLookup = "secbot:concept:lookup:"

// DefaultTTL 概念缓存默认过期时间
const DefaultTTL = 10 * time.Minute

// Store 基于 Redis 的概念缓存
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStoreFromClient 从已有连接创建缓存实例
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// GetConcept 查缓存
func (s *Store) GetConcept(ctx context.Context, term string) (*model.Concept, bool) {
	data, err := s.client.Get(ctx, KeyConceptLookup+term).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Redis/Concept] get %q failed: %v", term, err)
		}
		return nil, false
	}

	var c model.Concept
	if err := json.Unmarshal(data, &c); err != nil {
		log.Printf("[Redis/Concept] unmarshal %q failed: %v", term, err)
		return nil, false
	}
	return &c, true
}

// SetConcept 写缓存（尽力而为）
func (s *Store) SetConcept(ctx context.Context, term string, c *model.Concept) {
	data, err := json.Marshal(c)
	if err != nil {
		log.Printf("[Redis/Concept] marshal %q failed: %v", term, err)
		return
	}
	if err := s.client.Set(ctx, KeyConceptLookup+term, data, s.ttl).Err(); err != nil {
		log.Printf("[Redis/Concept] set %q failed: %v", term, err)
	}
}

var _ cache.ConceptCache = (*Store)(nil)
