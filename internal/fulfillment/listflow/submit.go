package listflow

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
)

// SubmitAnswers 批改用户对列表题目的作答
//
// question_numbers 与 answer 是平行列表（第 i 个序号对应第 i 个
// 作答）。选择题按字母大小写不敏感判分；理论题按关键词重合度
// 给出评语分档。批改后重置一个较短 lifespan 的轻量追问上下文，
// 携带同一 ID 列表，后续"giải thích câu N"仍可解析。
func (h *Handler) SubmitAnswers(ctx context.Context, params model.Params, inputContexts []model.Context, sess convo.SessionInfo) *convo.Result {
	contextName := sess.ContextName(convo.KindListFollowup)

	st, errResult := h.decodeList(inputContexts, contextName)
	if errResult != nil {
		return errResult
	}

	numbers := params.IntList("question_numbers")
	answers := params.StringList("answer")
	pairs := len(numbers)
	if len(answers) < pairs {
		pairs = len(answers)
	}
	if pairs == 0 {
		return h.rearm(convo.NewResult("Bạn muốn kiểm tra đáp án cho câu nào? Hãy cho tôi biết số câu và đáp án của bạn."),
			st, contextName, h.cfg.Lifespan)
	}

	// 只取在列表范围内的序号回库
	ids := make([]string, 0, pairs)
	for i := 0; i < pairs; i++ {
		idx := numbers[i] - 1
		if idx >= 0 && idx < len(st.Items) {
			ids = append(ids, st.Items[idx].QuestionID)
		}
	}
	byID, err := h.fetchByID(ctx, ids)
	if err != nil {
		log.Printf("[List] SubmitAnswers fetch error: %v", err)
		return h.rearm(convo.NewResult("Đã có lỗi xảy ra khi lấy dữ liệu câu hỏi."), st, contextName, h.cfg.Lifespan)
	}

	var b strings.Builder
	b.WriteString("Kết quả kiểm tra:")
	graded, correct := 0, 0
	for i := 0; i < pairs; i++ {
		number := numbers[i]
		idx := number - 1
		b.WriteString("\n")
		if idx < 0 || idx >= len(st.Items) {
			fmt.Fprintf(&b, "Câu %d: không có trong danh sách.", number)
			continue
		}
		q := byID[st.Items[idx].QuestionID]
		if q == nil {
			fmt.Fprintf(&b, "Câu %d: không tìm thấy dữ liệu câu hỏi.", number)
			continue
		}

		graded++
		if q.Type == model.QuestionTheory {
			fraction := gradeTheory(q.CorrectAnswer, answers[i])
			if fraction >= h.cfg.Grading.Good {
				correct++
			}
			fmt.Fprintf(&b, "Câu %d: Câu trả lời của bạn %s (khớp %d%% ý chính).",
				number, h.cfg.Grading.gradeLabel(fraction), int(math.Round(fraction*100)))
			continue
		}

		if strings.EqualFold(strings.TrimSpace(answers[i]), strings.TrimSpace(q.CorrectAnswer)) {
			correct++
			fmt.Fprintf(&b, "Câu %d: Chính xác!", number)
		} else {
			fmt.Fprintf(&b, "Câu %d: Chưa đúng, đáp án đúng là %s.", number, orNA(q.CorrectAnswer))
		}
	}
	fmt.Fprintf(&b, "\n\nBạn đúng %d/%d câu đã kiểm tra.", correct, graded)

	return h.rearm(convo.NewResult(b.String()), st, contextName, h.cfg.AnswerFollowupLifespan)
}
