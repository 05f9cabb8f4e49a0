// Package model 定义核心数据模型
//
// params.go 提供槽位参数的规范化访问。
//
// Dialogflow 的槽位取值形态不稳定：同一参数可能是字符串、数字、
// 也可能是数组（取决于 entity 是否标记为 list）。所有处理器都通过
// Params 做一次性归一化，而不是在各调用点分别做类型断言。
package model

import (
	"strconv"
	"strings"
)

// Params 槽位参数的规范化访问包装
type Params map[string]any

// String 返回字符串形式的参数值，数组取第一个元素
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		if len(val) == 0 {
			return ""
		}
		return toString(val[0])
	default:
		return toString(val)
	}
}

// StringList 返回数组形式的参数值（"强制转列表"归一化）
//
//   - 标量 → 单元素列表
//   - 数组 → 逐元素转字符串，空串剔除
//   - 缺失 → nil
func (p Params) StringList(key string) []string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	var out []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := toString(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Int 返回整数形式的参数值，不可解析时返回 def
//
// Dialogflow 的 @sys.number 经 JSON 解码后是 float64，也可能是
// 数字字符串，两种形态都接受。
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return def
}

// IntList 返回整数数组形式的参数值，不可解析的元素剔除
func (p Params) IntList(key string) []int {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	var out []int
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if n, ok := toInt(item); ok {
				out = append(out, n)
			}
		}
	default:
		if n, ok := toInt(val); ok {
			out = append(out, n)
		}
	}
	return out
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		// 整数值去掉小数部分（Dialogflow 的数字槽位都是 float64）
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
