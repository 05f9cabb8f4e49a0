package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
)

// 单题问答流：取一题 → 等待作答 → 判分 → 可追问解释。
// 状态只有三个标量参数，直接放结构化上下文，不走 JSON 串编码。

// RequestSingle 随机出一道单题
func (h *Handler) RequestSingle(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	filter := h.filterFromParams(params)
	filter.Count = 1

	questions, err := h.questions.SampleQuestions(ctx, filter)
	if err != nil {
		log.Printf("[Quiz] RequestSingle sampling error: %v", err)
		return convo.NewResult("Đã có lỗi xảy ra khi lấy câu hỏi trắc nghiệm.")
	}
	if len(questions) == 0 {
		return convo.NewResult("Xin lỗi, tôi không tìm thấy câu hỏi nào phù hợp với yêu cầu của bạn.")
	}

	q := questions[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Câu hỏi: %s", q.Content)
	for _, opt := range q.Options {
		b.WriteString("\n")
		b.WriteString(opt)
	}
	b.WriteString("\nHãy chọn đáp án (A, B, C, D).")

	return convo.NewResult(b.String()).WithContext(model.Context{
		Name:          sess.ContextName(convo.KindAwaitingSingleAnswer),
		LifespanCount: SingleAnswerLifespan,
		Parameters: map[string]any{
			"question_id":    q.ID,
			"correct_answer": q.CorrectAnswer,
			"explanation":    q.Explanation,
		},
	})
}

// AnswerSingle 判分单题作答
//
// 判分信息全部来自等待上下文，无需回库。上下文 lifespan 自然
// 递减，不需要显式清除。
func (h *Handler) AnswerSingle(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo) *convo.Result {
	waiting := convo.FindContext(inputContexts, convo.KindAwaitingSingleAnswer)
	if waiting == nil || waiting.Parameters == nil {
		return convo.NewResult("Xin lỗi, tôi không rõ bạn đang trả lời câu hỏi nào. Hãy thử yêu cầu câu hỏi mới.")
	}

	p := model.Params(waiting.Parameters)
	correct := p.String("correct_answer")
	explanation := p.String("explanation")
	if correct == "" {
		return convo.NewResult("Xin lỗi, tôi không rõ bạn đang trả lời câu hỏi nào. Hãy thử yêu cầu câu hỏi mới.")
	}

	userAnswer := params.String("answer")
	suffix := "\nBạn có muốn câu hỏi khác không?"
	if strings.EqualFold(strings.TrimSpace(userAnswer), correct) {
		return convo.NewResult(strings.TrimSpace("Chính xác! "+explanation) + suffix)
	}
	return convo.NewResult(strings.TrimSpace(fmt.Sprintf("Không đúng. Đáp án đúng là %s. %s", correct, explanation)) + suffix)
}

// ExplainSingle 追问单题解释
//
// 优先读等待上下文里的 explanation；没有时尝试用任一上下文
// 记住的 question_id 回库补取。
func (h *Handler) ExplainSingle(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo) *convo.Result {
	waiting := convo.FindContext(inputContexts, convo.KindAwaitingSingleAnswer)
	if waiting != nil && waiting.Parameters != nil {
		if explanation := model.Params(waiting.Parameters).String("explanation"); explanation != "" {
			return convo.NewResult(explanation)
		}
	}

	questionID := ""
	for i := range inputContexts {
		if inputContexts[i].Parameters == nil {
			continue
		}
		if id := model.Params(inputContexts[i].Parameters).String("question_id"); id != "" {
			questionID = id
			break
		}
	}
	if questionID == "" {
		return convo.NewResult("Xin lỗi, tôi không rõ bạn muốn giải thích câu hỏi nào.")
	}

	questions, err := h.questions.GetQuestionsByIDs(ctx, []string{questionID})
	if err != nil {
		log.Printf("[Quiz] ExplainSingle fetch %q error: %v", questionID, err)
		return convo.NewResult("Đã có lỗi xảy ra khi lấy giải thích.")
	}
	if len(questions) == 0 || questions[0].Explanation == "" {
		return convo.NewResult("Xin lỗi, tôi không tìm thấy giải thích cho câu hỏi này.")
	}
	return convo.NewResult(questions[0].Explanation)
}
