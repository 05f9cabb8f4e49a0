// Package cache 参考数据缓存抽象
//
// mock.go 提供用于测试的实现：NoOpCache（永不命中）和
// MemoryCache（进程内 map，无过期）。
package cache

import (
	"context"
	"sync"

	"secbot-fulfillment/internal/shared/model"
)

// NoOpCache 空操作缓存，所有查找都未命中
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (n *NoOpCache) GetConcept(ctx context.Context, term string) (*model.Concept, bool) {
	return nil, false
}

func (n *NoOpCache) SetConcept(ctx context.Context, term string, c *model.Concept) {}

// MemoryCache 进程内缓存（测试用，无过期）
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*model.Concept
}

// NewMemoryCache 创建 MemoryCache 实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*model.Concept)}
}

func (m *MemoryCache) GetConcept(ctx context.Context, term string) (*model.Concept, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.data[term]
	return c, ok
}

func (m *MemoryCache) SetConcept(ctx context.Context, term string, c *model.Concept) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[term] = c
}

// Len 返回缓存条目数（测试断言用）
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

var (
	_ ConceptCache = (*NoOpCache)(nil)
	_ ConceptCache = (*MemoryCache)(nil)
)
