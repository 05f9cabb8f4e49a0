// Package model 定义核心数据模型
//
// context.go 包含 Dialogflow v2 webhook 的线上数据结构：
//   - Context：会话上下文（name + lifespanCount + parameters）
//   - WebhookRequest / WebhookResponse：webhook 请求与响应信封
//
// 字段名与 Dialogflow 的 JSON 线上格式严格一致，平台按 name 全串
// 匹配上下文，lifespanCount 为 0 表示删除。
package model

// Context Dialogflow 会话上下文
//
// 这是本系统唯一的回合间状态载体：平台在每一轮把上一轮输出的
// 上下文原样送回（lifespan 每轮递减，归零删除）。
type Context struct {
	// Name 完整上下文名称
	// 格式: projects/{projectId}/agent/sessions/{sessionId}/contexts/{contextId}
	Name string `json:"name"`

	// LifespanCount 剩余存活轮数，0 表示立即删除
	LifespanCount int `json:"lifespanCount"`

	// Parameters 上下文负载
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Intent 识别到的意图
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// QueryResult Dialogflow 的识别结果
type QueryResult struct {
	QueryText string `json:"queryText,omitempty"`

	// Action 意图上配置的 action 标识（分发的首选键）
	Action string `json:"action,omitempty"`

	// Parameters 抽取出的槽位参数
	Parameters map[string]any `json:"parameters,omitempty"`

	// OutputContexts 当前激活的上下文（对 webhook 来说是输入上下文）
	OutputContexts []Context `json:"outputContexts,omitempty"`

	Intent Intent `json:"intent"`
}

// WebhookRequest Dialogflow v2 webhook 请求信封
type WebhookRequest struct {
	ResponseID  string      `json:"responseId,omitempty"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

// TextBlock fulfillmentMessages 中的文本块
type TextBlock struct {
	Text []string `json:"text"`
}

// Message fulfillmentMessages 条目
type Message struct {
	Text TextBlock `json:"text"`
}

// WebhookResponse Dialogflow v2 webhook 响应信封
type WebhookResponse struct {
	FulfillmentMessages []Message `json:"fulfillmentMessages"`
	OutputContexts      []Context `json:"outputContexts,omitempty"`
}

// NewTextResponse 构造单文本响应
func NewTextResponse(text string, contexts []Context) *WebhookResponse {
	return &WebhookResponse{
		FulfillmentMessages: []Message{{Text: TextBlock{Text: []string{text}}}},
		OutputContexts:      contexts,
	}
}
