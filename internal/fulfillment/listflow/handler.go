// Package listflow 题目列表追问领域
//
// 比测验简单的滚动窗口状态机：出一组题 → 用户按序号追问
// 答案/解释/批改 → 每次触碰都重置 lifespan（窗口保持打开）。
// 上下文只存题目 ID，详情每轮按选中集合批量重取。
package listflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// QueryKind 追问类型
type QueryKind string

const (
	// QueryAnswer 只要答案
	QueryAnswer QueryKind = "answer"

	// QueryExplanation 答案 + 解释
	QueryExplanation QueryKind = "explanation"
)

// Thresholds 理论题关键词重合度的评语分档
//
// 数值是启发式常量而非刻意的教学设计，保持可配置。
type Thresholds struct {
	VeryGood float64 `yaml:"very_good"`
	Good     float64 `yaml:"good"`
	Partial  float64 `yaml:"partial"`
}

// Config 列表追问领域配置
type Config struct {
	// DisplayCap 单次展示的硬上限（与用户要求的数量无关）
	DisplayCap int

	// Lifespan 列表追问上下文的存活轮数（每次触碰重置）
	Lifespan int

	// AnswerFollowupLifespan 批改后轻量追问上下文的存活轮数
	AnswerFollowupLifespan int

	// Grading 理论题评语分档
	Grading Thresholds
}

// DefaultConfig 默认列表配置
func DefaultConfig() Config {
	return Config{
		DisplayCap:             5,
		Lifespan:               5,
		AnswerFollowupLifespan: 3,
		Grading:                Thresholds{VeryGood: 0.8, Good: 0.5, Partial: 0.2},
	}
}

// followupPrompt 每次追问回复末尾的固定引导语
const followupPrompt = "Bạn có muốn tôi kiểm tra đáp án hay giải thích thêm câu nào thì cứ nói nhé!"

// Handler 列表追问处理器
type Handler struct {
	questions storage.QuestionStore
	cfg       Config
}

// NewHandler 创建列表追问处理器
func NewHandler(questions storage.QuestionStore, cfg Config) *Handler {
	if cfg.DisplayCap <= 0 {
		cfg.DisplayCap = 5
	}
	if cfg.Lifespan <= 0 {
		cfg.Lifespan = 5
	}
	if cfg.AnswerFollowupLifespan <= 0 {
		cfg.AnswerFollowupLifespan = 3
	}
	return &Handler{questions: questions, cfg: cfg}
}

// GenerateList 出一组题并打开追问窗口
func (h *Handler) GenerateList(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	r, _ := h.Generate(ctx, params, sess)
	return r
}

// Generate 出题并返回抽到的题目集
//
// 题目集同时返回给组合请求使用：紧随其后的 explain_quiz 步骤
// 直接用刚生成的集合，不回读上下文。
func (h *Handler) Generate(ctx context.Context, params model.Params, sess convo.SessionInfo) (*convo.Result, []*model.Question) {
	requested := params.Int("number", h.cfg.DisplayCap)
	if requested <= 0 {
		requested = h.cfg.DisplayCap
	}
	display := requested
	if display > h.cfg.DisplayCap {
		display = h.cfg.DisplayCap
	}

	qType := model.QuestionMultipleChoice
	if params.String("question_type") == string(model.QuestionTheory) {
		qType = model.QuestionTheory
	}

	filter := storage.QuestionFilter{
		Topic:      params.String("topic"),
		Difficulty: params.String("difficulty"),
		SubTopic:   params.String("concept"),
		Type:       qType,
		Count:      display,
	}

	questions, err := h.questions.SampleQuestions(ctx, filter)
	if err != nil {
		log.Printf("[List] Generate sampling error: %v", err)
		return convo.NewResult("Đã có lỗi xảy ra khi lấy danh sách câu hỏi."), nil
	}
	if len(questions) == 0 {
		return convo.NewResult("Xin lỗi, tôi không tìm thấy câu hỏi nào phù hợp với yêu cầu của bạn."), nil
	}

	st := &convo.ListState{
		Concept:      filter.SubTopic,
		Number:       requested,
		QuestionType: string(qType),
		Topic:        filter.Topic,
		Items:        make([]convo.ListItem, 0, len(questions)),
	}
	for _, q := range questions {
		st.Items = append(st.Items, convo.ListItem{QuestionID: q.ID})
	}

	listCtx, err := convo.EncodeListState(sess.ContextName(convo.KindListFollowup), h.cfg.Lifespan, st)
	if err != nil {
		log.Printf("[List] Generate encode error: %v", err)
		return convo.NewResult("Xin lỗi, danh sách câu hỏi quá lớn để theo dõi. Hãy thử với số câu ít hơn."), nil
	}

	var b strings.Builder
	if requested > h.cfg.DisplayCap {
		fmt.Fprintf(&b, "Bạn yêu cầu %d câu nhưng tôi chỉ hiển thị tối đa %d câu mỗi lần.\n\n", requested, h.cfg.DisplayCap)
	}
	fmt.Fprintf(&b, "Đây là %d câu hỏi theo yêu cầu của bạn:\n\n%s\n\nBạn muốn xem đáp án hoặc giải thích cho câu nào?",
		len(questions), formatList(questions))

	return convo.NewResult(b.String()).WithContext(listCtx), questions
}

// Query 按序号追问答案或解释
//
// 窗口永不收窄：不论这次问了哪些条目，重置的上下文始终携带
// 完整的 question_data。
func (h *Handler) Query(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo, kind QueryKind) *convo.Result {
	contextName := sess.ContextName(convo.KindListFollowup)

	st, errResult := h.decodeList(inputContexts, contextName)
	if errResult != nil {
		return errResult
	}

	indices, defaulted := convo.ResolveSelector(params.String("scope"), params.IntList("question_numbers"), len(st.Items))
	if len(indices) == 0 {
		return h.rearm(convo.NewResult("Số thứ tự câu hỏi không hợp lệ hoặc không được cung cấp."), st, contextName, h.cfg.Lifespan)
	}

	ids := make([]string, 0, len(indices))
	for _, idx := range indices {
		ids = append(ids, st.Items[idx].QuestionID)
	}
	byID, err := h.fetchByID(ctx, ids)
	if err != nil {
		log.Printf("[List] Query fetch error: %v", err)
		return h.rearm(convo.NewResult("Đã có lỗi xảy ra khi lấy dữ liệu câu hỏi."), st, contextName, h.cfg.Lifespan)
	}

	var b strings.Builder
	if defaulted {
		b.WriteString("Bạn không nói rõ câu nào nên tôi trả lời tất cả nhé.\n")
	}
	if kind == QueryAnswer {
		b.WriteString("Đáp án:")
	} else {
		b.WriteString("Giải thích:")
	}

	// 按列表展示顺序渲染（indices 已升序），不是选择器给出的顺序
	for _, idx := range indices {
		q := byID[st.Items[idx].QuestionID]
		b.WriteString("\n")
		if q == nil {
			fmt.Fprintf(&b, "Câu %d: không tìm thấy dữ liệu câu hỏi.", idx+1)
			continue
		}
		if kind == QueryAnswer {
			fmt.Fprintf(&b, "Câu %d: %s", idx+1, orNA(q.CorrectAnswer))
		} else {
			fmt.Fprintf(&b, "Câu %d: Đáp án %s. %s", idx+1, orNA(q.CorrectAnswer), orText(q.Explanation, "Không có giải thích."))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(followupPrompt)

	return h.rearm(convo.NewResult(b.String()), st, contextName, h.cfg.Lifespan)
}

// ExplainQuestions 渲染一个题目集的解释块（组合请求线程用）
func (h *Handler) ExplainQuestions(questions []*model.Question) string {
	var b strings.Builder
	b.WriteString("Giải thích:")
	for i, q := range questions {
		fmt.Fprintf(&b, "\nCâu %d: Đáp án %s. %s", i+1, orNA(q.CorrectAnswer), orText(q.Explanation, "Không có giải thích."))
	}
	return b.String()
}

// decodeList 查找并解码列表上下文，失败时直接给出面向用户的结果
//
// 缺失与损坏都强制清除上下文槽位，避免平台下一轮继续回送
// 不可用的状态。
func (h *Handler) decodeList(inputContexts []model.Context, contextName string) (*convo.ListState, *convo.Result) {
	listContext := convo.FindContext(inputContexts, convo.KindListFollowup)
	st, err := convo.DecodeListState(listContext)
	if err == nil {
		return st, nil
	}

	if listContext == nil || err == convo.ErrContextMissing {
		return nil, convo.NewResult("Xin lỗi, tôi không tìm thấy danh sách câu hỏi nào bạn đang xem. Hãy thử yêu cầu danh sách mới.").
			WithContext(convo.ClearContext(contextName))
	}
	log.Printf("[List] Decode list state error: %v", err)
	return nil, convo.NewResult("Có lỗi xảy ra khi đọc dữ liệu danh sách câu hỏi.").
		WithContext(convo.ClearContext(contextName))
}

// rearm 重置追问窗口（携带完整的 question_data）
func (h *Handler) rearm(r *convo.Result, st *convo.ListState, contextName string, lifespan int) *convo.Result {
	listCtx, err := convo.EncodeListState(contextName, lifespan, st)
	if err != nil {
		// 状态此前编码成功过，这里失败只可能是异常情况
		log.Printf("[List] Re-arm encode error: %v", err)
		return r
	}
	return r.WithContext(listCtx)
}

func (h *Handler) fetchByID(ctx context.Context, ids []string) (map[string]*model.Question, error) {
	questions, err := h.questions.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// formatList 渲染编号列表（1-based，选项缩进）
func formatList(questions []*model.Question) string {
	blocks := make([]string, 0, len(questions))
	for i, q := range questions {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s", i+1, q.Content)
		for _, opt := range q.Options {
			b.WriteString("\n   ")
			b.WriteString(opt)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
