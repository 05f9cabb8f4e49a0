// Package cache 定义参考数据缓存抽象
//
// 概念文档是只读参考数据，查找走正则匹配，适合做短 TTL 的
// 读穿缓存。注意：会话状态绝不进缓存——回合间状态只通过
// Dialogflow 上下文往返，这是系统的核心正确性约束。
package cache

import (
	"context"

	"secbot-fulfillment/internal/shared/model"
)

// ConceptCache 概念查找结果缓存
//
// 键是规范化后的检索词。实现必须把缓存故障当作未命中处理，
// 绝不向调用方传播错误。
type ConceptCache interface {
	// GetConcept 查缓存，未命中返回 (nil, false)
	GetConcept(ctx context.Context, term string) (*model.Concept, bool)

	// SetConcept 写缓存（尽力而为）
	SetConcept(ctx context.Context, term string, c *model.Concept)
}
