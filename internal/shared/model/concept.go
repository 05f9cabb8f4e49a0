package model

import "strings"

// Concept 安全概念文档
//
// _id 是内容库维护的规范概念标识（如 "firewall"），aliases 收录
// 用户可能说出的各种叫法（含越南语写法）。
type Concept struct {
	ID                  string            `bson:"_id" json:"id"`
	Name                string            `bson:"name" json:"name"`
	Aliases             []string          `bson:"aliases,omitempty" json:"aliases,omitempty"`
	Definition          string            `bson:"definition" json:"definition"`
	ExplanationDetailed string            `bson:"explanation_detailed,omitempty" json:"explanation_detailed,omitempty"`
	Examples            []ConceptExample  `bson:"examples,omitempty" json:"examples,omitempty"`
	ComparisonPoints    []ComparisonPoint `bson:"comparison_points,omitempty" json:"comparison_points,omitempty"`
}

// ConceptExample 概念示例条目
type ConceptExample struct {
	Type    string `bson:"type,omitempty" json:"type,omitempty"`
	Content string `bson:"content" json:"content"`
}

// ComparisonPoint 与另一概念的预写对比文本
type ComparisonPoint struct {
	CompareWithConcept string `bson:"compare_with_concept" json:"compare_with_concept"`
	ComparisonText     string `bson:"comparison_text" json:"comparison_text"`
}

// DisplayName 面向用户的概念名（name 为空时退回 _id）
func (c *Concept) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// ComparisonWith 查找与 target 概念的对比文本
//
// 按 compare_with_concept 大小写不敏感匹配，未找到返回空串。
func (c *Concept) ComparisonWith(target string) string {
	want := strings.ToLower(strings.TrimSpace(target))
	if want == "" {
		return ""
	}
	for _, p := range c.ComparisonPoints {
		if strings.ToLower(strings.TrimSpace(p.CompareWithConcept)) == want {
			return p.ComparisonText
		}
	}
	return ""
}

// ExamplesOfType 返回指定类型的示例子集
func (c *Concept) ExamplesOfType(exampleType string) []ConceptExample {
	want := strings.ToLower(strings.TrimSpace(exampleType))
	var out []ConceptExample
	for _, ex := range c.Examples {
		if strings.ToLower(strings.TrimSpace(ex.Type)) == want {
			out = append(out, ex)
		}
	}
	return out
}
