package mongostore

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"secbot-fulfillment/internal/shared/storage"
)

// wrapError 将 MongoDB 错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}

// findOne 查找单个文档并解码到 result
// 文档不存在时返回 (nil, nil)：对查找类操作"未命中"不是错误
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &result, nil
}

// decodeAll 遍历游标并解码所有文档
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]*T, error) {
	defer cursor.Close(ctx)

	var results []*T
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

// anchoredCI 构造全串、大小写不敏感的正则匹配条件
// 用户输入先做元字符转义，避免检索词被解释为正则
func anchoredCI(term string) bson.D {
	return bson.D{
		{Key: "$regex", Value: "^" + regexp.QuoteMeta(term) + "$"},
		{Key: "$options", Value: "i"},
	}
}

// substringCI 构造子串、大小写不敏感的正则匹配条件
func substringCI(term string) bson.D {
	return bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(term)},
		{Key: "$options", Value: "i"},
	}
}
