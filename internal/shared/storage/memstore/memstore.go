// Package memstore 基于内存的 storage.PersistentStore 实现
//
// 用于单元测试和无 MongoDB 的本地开发。抽样使用可注入的随机源，
// 测试可通过 SetRand 获得确定性结果。
package memstore

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu        sync.RWMutex
	concepts  []*model.Concept
	questions []*model.Question
	rng       *rand.Rand
}

// NewStore 创建内存存储实例
func NewStore(concepts []*model.Concept, questions []*model.Question) *Store {
	return &Store{
		concepts:  concepts,
		questions: questions,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand 注入确定性随机源（测试用）
func (s *Store) SetRand(rng *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rng
}

// Close 关闭存储（内存实现为空操作）
func (s *Store) Close() error { return nil }

// FindConcept 按检索词查找概念
func (s *Store) FindConcept(ctx context.Context, term string) (*model.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(term))
	if want == "" {
		return nil, nil
	}

	// 优先级 1：concept_id / alias 全串匹配
	for _, c := range s.concepts {
		if strings.ToLower(c.ID) == want {
			return c, nil
		}
		for _, a := range c.Aliases {
			if strings.ToLower(strings.TrimSpace(a)) == want {
				return c, nil
			}
		}
	}

	// 优先级 2：name 子串匹配
	for _, c := range s.concepts {
		if strings.Contains(strings.ToLower(c.Name), want) {
			return c, nil
		}
	}
	return nil, nil
}

// SampleQuestions 按过滤条件随机抽样
func (s *Store) SampleQuestions(ctx context.Context, filter storage.QuestionFilter) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.Question
	for _, q := range s.questions {
		if matches(q, filter) {
			matched = append(matched, q)
		}
	}

	s.rng.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})

	if filter.Count > 0 && len(matched) > filter.Count {
		matched = matched[:filter.Count]
	}
	return matched, nil
}

// GetQuestionsByIDs 按 ID 集合批量获取
func (s *Store) GetQuestionsByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var out []*model.Question
	for _, q := range s.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func matches(q *model.Question, f storage.QuestionFilter) bool {
	if f.Topic != "" && q.Topic != f.Topic {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.SubTopic != "" && !strings.EqualFold(strings.TrimSpace(q.SubTopic), strings.TrimSpace(f.SubTopic)) {
		return false
	}
	if f.Type != "" && q.Type != f.Type {
		return false
	}
	return true
}

// 确保 Store 实现了 PersistentStore 接口
var _ storage.PersistentStore = (*Store)(nil)
