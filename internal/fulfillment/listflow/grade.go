package listflow

import (
	"strings"
	"unicode"
)

// gradeTheory 理论题的关键词重合度评分
//
// 模型答案分词得到关键词集合，统计其中出现在用户自由文本里的
// 比例。返回 [0,1] 的重合度；模型答案为空时定义为 0。
func gradeTheory(modelAnswer, userAnswer string) float64 {
	keywords := tokenize(modelAnswer)
	if len(keywords) == 0 {
		return 0
	}
	userTokens := make(map[string]bool)
	for _, t := range tokenize(userAnswer) {
		userTokens[t] = true
	}

	matched := 0
	seen := make(map[string]bool, len(keywords))
	total := 0
	for _, kw := range keywords {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		total++
		if userTokens[kw] {
			matched++
		}
	}
	return float64(matched) / float64(total)
}

// gradeLabel 把重合度映射为评语
func (t Thresholds) gradeLabel(fraction float64) string {
	switch {
	case fraction >= t.VeryGood:
		return "rất tốt"
	case fraction >= t.Good:
		return "khá tốt"
	case fraction >= t.Partial:
		return "có liên quan một phần"
	default:
		return "chưa khớp với đáp án"
	}
}

// tokenize 小写分词，保留字母/数字串，剔除单字符词
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
