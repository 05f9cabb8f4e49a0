// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（生产）、memstore/（测试与本地开发）
//   - 初始化时通过依赖注入传入实现，处理器不持有全局句柄
package storage

import (
	"context"

	"secbot-fulfillment/internal/shared/model"
)

// QuestionFilter 题目抽样过滤条件
//
// 非空字段按 AND 组合；SubTopic 为大小写不敏感的全等匹配。
type QuestionFilter struct {
	Topic      string
	Difficulty string
	SubTopic   string
	Type       model.QuestionType

	// Count 抽样数量。存储层不做上限裁剪，展示上限由调用方负责。
	Count int
}

// ConceptStore 概念文档查找
type ConceptStore interface {
	// FindConcept 按检索词查找概念
	//
	// 匹配优先级：
	//  1. concept_id 或任一 alias 的全串匹配（大小写不敏感、去空白）
	//  2. name 的子串匹配（大小写不敏感）
	//
	// 未命中返回 (nil, nil)，不是错误。
	FindConcept(ctx context.Context, term string) (*model.Concept, error)
}

// QuestionStore 题目文档抽样与批量获取
type QuestionStore interface {
	// SampleQuestions 按过滤条件随机抽样
	//
	// 匹配数不足时返回少于 Count 条（包括零条），不是错误。
	// 每次调用独立抽样，跨调用不去重。
	SampleQuestions(ctx context.Context, filter QuestionFilter) ([]*model.Question, error)

	// GetQuestionsByIDs 按 ID 集合批量获取
	//
	// 返回顺序不保证与 ids 一致；无效 ID 跳过。
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]*model.Question, error)
}

// PersistentStore 完整存储层接口
type PersistentStore interface {
	ConceptStore
	QuestionStore
	Close() error
}
