package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"secbot-fulfillment/internal/shared/model"
)

// FindConcept 按检索词查找概念
//
// 查询形态与内容库的写入约定一致：
//  1. _id 或 aliases 的锚定正则全串匹配（大小写不敏感）
//  2. 未命中时退回 name 的子串匹配
func (s *Store) FindConcept(ctx context.Context, term string) (*model.Concept, error) {
	searchTerm := strings.ToLower(strings.TrimSpace(term))
	if searchTerm == "" {
		return nil, nil
	}

	col := s.col(ColConcepts)

	doc, err := findOne[model.Concept](ctx, col, bson.D{
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "_id", Value: anchoredCI(searchTerm)}},
			bson.D{{Key: "aliases", Value: anchoredCI(searchTerm)}},
		}},
	})
	if err != nil {
		return nil, err
	}
	if doc != nil {
		return doc, nil
	}

	return findOne[model.Concept](ctx, col, bson.D{
		{Key: "name", Value: substringCI(searchTerm)},
	})
}
