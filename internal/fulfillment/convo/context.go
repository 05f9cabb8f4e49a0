// Package convo 会话上下文协议层
//
// 本系统没有服务端会话存储：一次测验（或一个待追问的题目列表）的
// 全部状态都编码在 Dialogflow 回传的上下文参数里，每一轮从输入
// 上下文完整重建。convo 包实现这套协议：
//   - context.go：上下文命名、会话路径解析、查找与合并
//   - codec.go：测验/列表状态的序列化与反序列化（含大小上限）
//   - selector.go：列表追问的序号选择器解析
package convo

import (
	"regexp"

	"secbot-fulfillment/internal/shared/model"
)

// 上下文种类标识（contextId 段）
//
// 平台按全名匹配上下文，这些 ID 与 Dialogflow 控制台里
// 意图的 input/output context 配置一一对应，不可改动。
const (
	// KindInQuiz 进行中的测验，负载为 quiz_state JSON 串
	KindInQuiz = "context_in_quiz"

	// KindListFollowup 题目列表追问窗口，负载为结构化参数
	KindListFollowup = "quiz_list_followup"

	// KindConceptDefined 概念追问锚点（代词消解用）
	KindConceptDefined = "context_concept_defined"

	// KindAwaitingSingleAnswer 等待单题作答
	KindAwaitingSingleAnswer = "context_awaiting_single_answer"
)

// sessionPathRe 会话路径解析模式
// 兼容 projects/<P>/agent/sessions/<S> 与带 environments/users 段的变体
var sessionPathRe = regexp.MustCompile(`projects/([^/]+)/(?:agent/)?(?:environments/[^/]+/users/[^/]+/)?sessions/([^/]+)`)

// SessionInfo 从会话路径解析出的定位信息
type SessionInfo struct {
	ProjectID string
	SessionID string
}

// ParseSessionPath 从会话路径解析 projectId 和 sessionId
//
// 解析失败不报错：退回 defaultProjectID + 原始整串作为 sessionId。
// 这保证编解码层永远不会因畸形会话串阻塞响应生成。
func ParseSessionPath(path, defaultProjectID string) SessionInfo {
	m := sessionPathRe.FindStringSubmatch(path)
	if m != nil && m[1] != "" && m[2] != "" {
		return SessionInfo{ProjectID: m[1], SessionID: m[2]}
	}
	return SessionInfo{ProjectID: defaultProjectID, SessionID: path}
}

// BuildContextName 构造完整上下文名称
//
// 模板必须与平台逐字一致，平台按全串匹配跨轮上下文。
func BuildContextName(projectID, sessionID, kind string) string {
	return "projects/" + projectID + "/agent/sessions/" + sessionID + "/contexts/" + kind
}

// ContextName 构造该会话下指定种类的上下文名称
func (s SessionInfo) ContextName(kind string) string {
	return BuildContextName(s.ProjectID, s.SessionID, kind)
}

// FindContext 在输入上下文中按种类查找（后缀匹配）
//
// 未找到返回 nil。
func FindContext(contexts []model.Context, kind string) *model.Context {
	suffix := "/contexts/" + kind
	for i := range contexts {
		if len(contexts[i].Name) >= len(suffix) &&
			contexts[i].Name[len(contexts[i].Name)-len(suffix):] == suffix {
			return &contexts[i]
		}
	}
	return nil
}

// ClearContext 构造删除指令（lifespan 0）
func ClearContext(name string) model.Context {
	return model.Context{Name: name, LifespanCount: 0}
}

// MergeContexts 按名称合并上下文列表
//
// 同名上下文必须合并为一个实例后才能返回给平台：
//   - 参数逐键合并，后写覆盖先写
//   - lifespan 取各次写入的最大值
//
// 保持首次出现的顺序（组合请求的步骤顺序即合并的决定性规则）。
func MergeContexts(contexts []model.Context) []model.Context {
	if len(contexts) <= 1 {
		return contexts
	}

	var order []string
	merged := make(map[string]*model.Context)

	for _, c := range contexts {
		existing, ok := merged[c.Name]
		if !ok {
			cp := c
			if c.Parameters != nil {
				cp.Parameters = make(map[string]any, len(c.Parameters))
				for k, v := range c.Parameters {
					cp.Parameters[k] = v
				}
			}
			merged[c.Name] = &cp
			order = append(order, c.Name)
			continue
		}
		if c.LifespanCount > existing.LifespanCount {
			existing.LifespanCount = c.LifespanCount
		}
		if len(c.Parameters) > 0 {
			if existing.Parameters == nil {
				existing.Parameters = make(map[string]any, len(c.Parameters))
			}
			for k, v := range c.Parameters {
				existing.Parameters[k] = v
			}
		}
	}

	out := make([]model.Context, 0, len(order))
	for _, name := range order {
		out = append(out, *merged[name])
	}
	return out
}

// Result 处理器的统一输出：响应文本 + 上下文指令
type Result struct {
	Text           string
	OutputContexts []model.Context
}

// NewResult 构造仅含文本的结果
func NewResult(text string) *Result {
	return &Result{Text: text}
}

// WithContext 追加一条上下文指令
func (r *Result) WithContext(c model.Context) *Result {
	r.OutputContexts = append(r.OutputContexts, c)
	return r
}
