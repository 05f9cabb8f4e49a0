package storage

import (
	"context"
	"strings"

	"secbot-fulfillment/internal/shared/cache"
	"secbot-fulfillment/internal/shared/model"
)

// CachedConceptStore 带读穿缓存的 ConceptStore 装饰器
//
// 只缓存命中结果；未命中不缓存，保证新写入的概念文档
// 最多延迟一个 TTL 可见。
type CachedConceptStore struct {
	inner ConceptStore
	cache cache.ConceptCache
}

// NewCachedConceptStore 创建缓存装饰器
func NewCachedConceptStore(inner ConceptStore, c cache.ConceptCache) *CachedConceptStore {
	return &CachedConceptStore{inner: inner, cache: c}
}

// FindConcept 先查缓存，未命中落到底层存储
func (s *CachedConceptStore) FindConcept(ctx context.Context, term string) (*model.Concept, error) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return nil, nil
	}

	if c, ok := s.cache.GetConcept(ctx, key); ok {
		return c, nil
	}

	c, err := s.inner.FindConcept(ctx, term)
	if err != nil {
		return nil, err
	}
	if c != nil {
		s.cache.SetConcept(ctx, key, c)
	}
	return c, nil
}

var _ ConceptStore = (*CachedConceptStore)(nil)
