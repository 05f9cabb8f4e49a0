// Package quiz 测验领域 - 上下文承载的多题测验状态机
//
// 状态流转：NotStarted → Ongoing → Completed。
// 没有服务端会话存储：整个题集与判分状态在每个作答轮从
// context_in_quiz 重建、变更后重新编码写回。平台是唯一的
// 回合串行器，本包绝不假设进程内跨轮连续性。
package quiz

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// SingleAnswerLifespan 单题作答等待上下文的存活轮数
const SingleAnswerLifespan = 2

// Config 测验领域配置
type Config struct {
	// DefaultCount 未指定题数时的默认抽样数
	DefaultCount int

	// LifespanSlack 测验上下文在 total_questions 之外的冗余轮数。
	// 每题恰好消耗一轮，但中途可能穿插闲聊，lifespan 必须
	// 明显大于题数。
	LifespanSlack int
}

// DefaultConfig 默认测验配置
func DefaultConfig() Config {
	return Config{DefaultCount: 10, LifespanSlack: 10}
}

// Handler 测验状态机处理器
type Handler struct {
	questions storage.QuestionStore
	cfg       Config
}

// NewHandler 创建测验处理器
func NewHandler(questions storage.QuestionStore, cfg Config) *Handler {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 10
	}
	if cfg.LifespanSlack <= 0 {
		cfg.LifespanSlack = 10
	}
	return &Handler{questions: questions, cfg: cfg}
}

// lifespanFor 计算测验上下文的 lifespan
func (h *Handler) lifespanFor(totalQuestions int) int {
	return totalQuestions + h.cfg.LifespanSlack
}

// filterFromParams 从槽位参数构造抽样条件（测验只出选择题）
func (h *Handler) filterFromParams(params model.Params) storage.QuestionFilter {
	return storage.QuestionFilter{
		Topic:      params.String("topic"),
		Difficulty: params.String("difficulty"),
		SubTopic:   params.String("concept"),
		Type:       model.QuestionMultipleChoice,
		Count:      params.Int("number", h.cfg.DefaultCount),
	}
}

// Start 开始一次测验
//
// 抽样为零 → 未找到提示，不创建会话上下文。
// 状态编码超出大小上限 → 该轮硬失败，同样不创建上下文。
func (h *Handler) Start(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	filter := h.filterFromParams(params)
	if filter.Count <= 0 {
		filter.Count = h.cfg.DefaultCount
	}

	questions, err := h.questions.SampleQuestions(ctx, filter)
	if err != nil {
		log.Printf("[Quiz] Start sampling error: %v", err)
		return convo.NewResult("Đã có lỗi xảy ra khi bắt đầu bài thi.")
	}
	if len(questions) == 0 {
		return convo.NewResult("Xin lỗi, tôi không tìm thấy câu hỏi nào phù hợp để tạo bài thi.")
	}

	st := &convo.QuizState{
		QuizID:               uuid.NewString(),
		Status:               convo.QuizStatusOngoing,
		Topic:                filter.Topic,
		Difficulty:           filter.Difficulty,
		Questions:            toQuizQuestions(questions),
		TotalQuestions:       len(questions),
		CurrentQuestionIndex: 0,
		Score:                0,
		StartTime:            time.Now().UTC().Format(time.RFC3339),
	}

	quizCtx, err := convo.EncodeQuizState(sess.ContextName(convo.KindInQuiz), h.lifespanFor(st.TotalQuestions), st)
	if err != nil {
		log.Printf("[Quiz] Start encode error (quiz %s): %v", st.QuizID, err)
		return convo.NewResult("Xin lỗi, bài thi quá lớn để bắt đầu theo cách này. Hãy thử lại với số câu ít hơn.")
	}

	text := fmt.Sprintf("Bắt đầu bài thi! (%d câu)\n%s", st.TotalQuestions, formatQuestion(1, &st.Questions[0]))
	log.Printf("[Quiz] Started quiz %s with %d questions", st.QuizID, st.TotalQuestions)
	return convo.NewResult(text).WithContext(quizCtx)
}

// Answer 处理一个作答轮
//
// 要求存在可解析且 ongoing 的测验上下文；缺失 / 损坏 / 状态不符
// 分别给出不同提示。下标越界视为内部一致性故障：清除上下文而
// 不是继续在坏状态上运转。
func (h *Handler) Answer(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo) *convo.Result {
	contextName := sess.ContextName(convo.KindInQuiz)

	st, errResult := h.decodeQuiz(inputContexts, contextName)
	if errResult != nil {
		return errResult
	}

	if st.Status != convo.QuizStatusOngoing {
		return convo.NewResult("Bài thi này đã kết thúc.")
	}

	idx := st.CurrentQuestionIndex
	if idx < 0 || idx >= st.TotalQuestions || idx >= len(st.Questions) {
		log.Printf("[Quiz] Invalid current_question_index %d in quiz %s", idx, st.QuizID)
		return convo.NewResult("Có lỗi với thứ tự câu hỏi, vui lòng bắt đầu lại.").
			WithContext(convo.ClearContext(contextName))
	}

	userAnswer := params.String("answer")
	current := &st.Questions[idx]
	isCorrect := strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(current.CorrectAnswer))
	if isCorrect {
		st.Score++
	}
	current.UserAnswer = &userAnswer
	current.IsCorrect = &isCorrect
	st.CurrentQuestionIndex++

	next := st.CurrentQuestionIndex
	if next < st.TotalQuestions {
		quizCtx, err := convo.EncodeQuizState(contextName, h.lifespanFor(st.TotalQuestions), st)
		if err != nil {
			// 状态无法写回就不能继续测验，否则下一轮会丢失本轮判分
			log.Printf("[Quiz] Answer re-encode error (quiz %s): %v", st.QuizID, err)
			return convo.NewResult("Xin lỗi, đã có lỗi khi lưu trạng thái bài thi. Vui lòng bắt đầu lại.").
				WithContext(convo.ClearContext(contextName))
		}
		return convo.NewResult(formatQuestion(next+1, &st.Questions[next])).WithContext(quizCtx)
	}

	// 最后一题：完结，不再写回 ongoing 上下文（让其自然过期）
	st.Status = convo.QuizStatusCompleted
	st.EndTime = time.Now().UTC().Format(time.RFC3339)
	pct := percentage(st.Score, st.TotalQuestions)
	log.Printf("[Quiz] Completed quiz %s, score %d/%d", st.QuizID, st.Score, st.TotalQuestions)
	return convo.NewResult(fmt.Sprintf("Bài thi kết thúc!\nBạn đã trả lời đúng %d/%d câu (%d%%).",
		st.Score, st.TotalQuestions, pct))
}

// End 用户主动结束测验
//
// 没有活动测验 → 无操作提示（不是错误）。
// 有则不论完成与否都总结当前得分，然后强制清除上下文。
func (h *Handler) End(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo) *convo.Result {
	contextName := sess.ContextName(convo.KindInQuiz)

	quizContext := convo.FindContext(inputContexts, convo.KindInQuiz)
	st, err := convo.DecodeQuizState(quizContext)
	if err != nil {
		if quizContext == nil {
			return convo.NewResult("Bạn hiện không ở trong bài thi nào.")
		}
		log.Printf("[Quiz] End decode error: %v", err)
		return convo.NewResult("Lỗi đọc trạng thái bài thi để kết thúc.").
			WithContext(convo.ClearContext(contextName))
	}

	pct := percentage(st.Score, st.TotalQuestions)
	log.Printf("[Quiz] Quiz %s ended by user, score %d/%d", st.QuizID, st.Score, st.TotalQuestions)
	return convo.NewResult(fmt.Sprintf("Bài thi đã kết thúc.\nKết quả: %d/%d câu đúng (%d%%).",
		st.Score, st.TotalQuestions, pct)).
		WithContext(convo.ClearContext(contextName))
}

// decodeQuiz 查找并解码测验上下文，失败时直接给出面向用户的结果
func (h *Handler) decodeQuiz(inputContexts []model.Context, contextName string) (*convo.QuizState, *convo.Result) {
	quizContext := convo.FindContext(inputContexts, convo.KindInQuiz)
	st, err := convo.DecodeQuizState(quizContext)
	if err == nil {
		return st, nil
	}

	if quizContext == nil {
		return nil, convo.NewResult("Có lỗi xảy ra, tôi không tìm thấy trạng thái bài thi của bạn. Hãy thử bắt đầu lại.")
	}
	if err == convo.ErrContextMissing {
		// 上下文存在但负载缺失：清掉坏槽位，避免平台下一轮继续回送
		return nil, convo.NewResult("Có lỗi xảy ra, tôi không tìm thấy trạng thái bài thi của bạn. Hãy thử bắt đầu lại.").
			WithContext(convo.ClearContext(contextName))
	}
	log.Printf("[Quiz] Decode quiz state error: %v", err)
	return nil, convo.NewResult("Lỗi đọc trạng thái bài thi.").
		WithContext(convo.ClearContext(contextName))
}

// percentage 计算得分百分比，total 为 0 时定义为 0%
func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// formatQuestion 渲染一道题（题号 + 题干 + 选项）
func formatQuestion(number int, q *convo.QuizQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Câu %d: %s", number, q.Content)
	for _, opt := range q.Options {
		b.WriteString("\n")
		b.WriteString(opt)
	}
	return b.String()
}

// toQuizQuestions 把题目文档转换为测验状态中的题目条目
func toQuizQuestions(questions []*model.Question) []convo.QuizQuestion {
	out := make([]convo.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, convo.QuizQuestion{
			QuestionID:    q.ID,
			Content:       q.Content,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return out
}
