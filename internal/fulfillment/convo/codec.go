package convo

import (
	"encoding/json"
	"errors"
	"fmt"

	"secbot-fulfillment/internal/shared/model"
)

// 编解码错误
//
// ErrContextMissing 与 ErrContextCorrupt 必须区分：前者对用户是
// "请重新开始"，后者是"状态读取出错"——两种情况的提示和处置不同。
var (
	// ErrContextMissing 上下文不存在或负载字段缺失
	ErrContextMissing = errors.New("convo: context missing")

	// ErrContextCorrupt 负载存在但无法解析
	ErrContextCorrupt = errors.New("convo: context payload corrupt")

	// ErrPayloadTooLarge 序列化负载超出平台大小上限
	ErrPayloadTooLarge = errors.New("convo: context payload exceeds size limit")
)

// MaxPayloadBytes 上下文负载序列化大小上限（字节）
//
// 平台对上下文参数有实际大小限制，超限是该轮的硬失败，
// 绝不静默截断测验状态。
const MaxPayloadBytes = 10000

// ParamQuizState 测验状态在上下文参数中的键
const ParamQuizState = "quiz_state"

// 测验状态取值
const (
	QuizStatusOngoing   = "ongoing"
	QuizStatusCompleted = "completed"
)

// QuizQuestion 测验中单题的完整状态（含判分结果）
type QuizQuestion struct {
	QuestionID    string   `json:"question_id"`
	Content       string   `json:"content"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`

	// UserAnswer / IsCorrect 作答前为 null
	UserAnswer *string `json:"user_answer"`
	IsCorrect  *bool   `json:"is_correct"`
}

// QuizState 一次测验的完整会话状态
//
// 整个题集和逐题判分状态都内嵌于此——没有任何外部存储持有它。
// 每个作答轮重建、变更、重新编码写回上下文。
type QuizState struct {
	QuizID               string         `json:"quiz_id"`
	Status               string         `json:"status"`
	Topic                string         `json:"topic,omitempty"`
	Difficulty           string         `json:"difficulty,omitempty"`
	Questions            []QuizQuestion `json:"questions"`
	TotalQuestions       int            `json:"total_questions"`
	CurrentQuestionIndex int            `json:"current_question_index"`
	Score                int            `json:"score"`
	StartTime            string         `json:"start_time"`
	EndTime              string         `json:"end_time,omitempty"`
}

// EncodeQuizState 把测验状态编码为上下文
//
// 状态整体序列化为 JSON 串存入单个 quiz_state 参数。
// 超出 MaxPayloadBytes 返回 ErrPayloadTooLarge，该轮必须失败。
func EncodeQuizState(name string, lifespan int, st *QuizState) (model.Context, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return model.Context{}, fmt.Errorf("convo: marshal quiz state: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return model.Context{}, fmt.Errorf("%w: quiz state is %d bytes", ErrPayloadTooLarge, len(data))
	}
	return model.Context{
		Name:          name,
		LifespanCount: lifespan,
		Parameters:    map[string]any{ParamQuizState: string(data)},
	}, nil
}

// DecodeQuizState 从上下文重建测验状态
//
// c 为 nil 或 quiz_state 参数缺失 → ErrContextMissing；
// 参数存在但不是合法 JSON → ErrContextCorrupt。
func DecodeQuizState(c *model.Context) (*QuizState, error) {
	if c == nil || c.Parameters == nil {
		return nil, ErrContextMissing
	}
	raw, ok := c.Parameters[ParamQuizState]
	if !ok {
		return nil, ErrContextMissing
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, ErrContextCorrupt
	}

	var st QuizState
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCorrupt, err)
	}
	return &st, nil
}

// 列表追问上下文的参数键
const (
	ParamConcept      = "concept"
	ParamNumber       = "number"
	ParamQuestionType = "question_type"
	ParamTopic        = "topic"
	ParamQuestionData = "question_data"
)

// ListItem 列表追问条目——只存题目 ID，详情每轮重取
type ListItem struct {
	QuestionID string `json:"question_id"`
}

// ListState 题目列表追问窗口的状态
//
// 比测验状态轻量：只持有 ID 和原始过滤参数，
// 追问时按选中的 ID 批量重取题目详情。
type ListState struct {
	Concept      string
	Number       int
	QuestionType string
	Topic        string
	Items        []ListItem
}

// EncodeListState 把列表状态编码为上下文（结构化参数）
func EncodeListState(name string, lifespan int, st *ListState) (model.Context, error) {
	items := make([]any, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, map[string]any{"question_id": it.QuestionID})
	}
	params := map[string]any{
		ParamConcept:      st.Concept,
		ParamNumber:       st.Number,
		ParamQuestionType: st.QuestionType,
		ParamTopic:        st.Topic,
		ParamQuestionData: items,
	}

	// 结构化参数同样受平台大小上限约束
	data, err := json.Marshal(params)
	if err != nil {
		return model.Context{}, fmt.Errorf("convo: marshal list state: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return model.Context{}, fmt.Errorf("%w: list state is %d bytes", ErrPayloadTooLarge, len(data))
	}

	return model.Context{Name: name, LifespanCount: lifespan, Parameters: params}, nil
}

// DecodeListState 从上下文重建列表状态
//
// question_data 缺失 → ErrContextMissing（没有活动列表）；
// 存在但形态不对 → ErrContextCorrupt。
// 负载经过平台 JSON 往返后是 []any/map[string]any 形态，
// 借 JSON 再编解码归一化为类型化结构。
func DecodeListState(c *model.Context) (*ListState, error) {
	if c == nil || c.Parameters == nil {
		return nil, ErrContextMissing
	}
	raw, ok := c.Parameters[ParamQuestionData]
	if !ok || raw == nil {
		return nil, ErrContextMissing
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCorrupt, err)
	}
	var items []ListItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCorrupt, err)
	}

	p := model.Params(c.Parameters)
	return &ListState{
		Concept:      p.String(ParamConcept),
		Number:       p.Int(ParamNumber, 0),
		QuestionType: p.String(ParamQuestionType),
		Topic:        p.String(ParamTopic),
		Items:        items,
	}, nil
}
