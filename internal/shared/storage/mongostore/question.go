package mongostore

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"

	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// questionDoc 题目在 MongoDB 中的存储形态
//
// _id 是 ObjectID，model.Question 对外以 hex 字符串暴露，
// 在此做一次转换，业务层不接触驱动类型。
type questionDoc struct {
	ID             bson.ObjectID      `bson:"_id"`
	model.Question `bson:",inline"`
}

func (d *questionDoc) toModel() *model.Question {
	q := d.Question
	q.ID = d.ID.Hex()
	return &q
}

// SampleQuestions 按过滤条件随机抽样
//
// 使用 $match + $sample 聚合管道，与内容库的查询约定一致。
func (s *Store) SampleQuestions(ctx context.Context, filter storage.QuestionFilter) ([]*model.Question, error) {
	match := bson.D{}
	if filter.Topic != "" {
		match = append(match, bson.E{Key: "topic", Value: filter.Topic})
	}
	if filter.Difficulty != "" {
		match = append(match, bson.E{Key: "difficulty", Value: filter.Difficulty})
	}
	if filter.SubTopic != "" {
		match = append(match, bson.E{Key: "sub_topic", Value: anchoredCI(filter.SubTopic)})
	}
	if filter.Type != "" {
		match = append(match, bson.E{Key: "type", Value: string(filter.Type)})
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: filter.Count}}}},
	}
	cursor, err := s.col(ColQuestions).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}

	docs, err := decodeAll[questionDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Question, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// GetQuestionsByIDs 按 ID 集合批量获取
//
// hex 解析失败的 ID 跳过（上下文可能被平台截断或篡改），
// 不因个别坏 ID 导致整批失败。
func (s *Store) GetQuestionsByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			log.Printf("[Mongo/Question] skipping invalid question id %q: %v", id, err)
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return []*model.Question{}, nil
	}

	cursor, err := s.col(ColQuestions).Find(ctx, bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}},
	})
	if err != nil {
		return nil, wrapError(err)
	}

	docs, err := decodeAll[questionDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Question, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
