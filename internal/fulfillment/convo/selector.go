package convo

import (
	"sort"
	"strings"
)

// ScopeAll 选择器的"全部"取值
const ScopeAll = "all"

// ResolveSelector 解析列表追问的条目选择器
//
// 规则：
//   - scope == "all" → 全部下标
//   - numbers 非空 → 1-based 转 0-based，去重、排序、越界剔除
//   - 两者都缺 → 默认全部，defaulted 置 true（调用方需在回复中注明
//     用户没有指定具体条目）
//
// 返回的下标始终按列表展示顺序升序排列。
func ResolveSelector(scope string, numbers []int, total int) (indices []int, defaulted bool) {
	if total <= 0 {
		return nil, false
	}

	all := func() []int {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}

	if strings.ToLower(strings.TrimSpace(scope)) == ScopeAll {
		return all(), false
	}

	if len(numbers) == 0 {
		return all(), true
	}

	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		idx := n - 1
		if idx < 0 || idx >= total || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, false
}
