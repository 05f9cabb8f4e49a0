package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
)

func singleQuestionStore() *stubQuestions {
	q := twoQuestions()[0]
	return &stubQuestions{
		sample: []*model.Question{q},
		byID:   map[string]*model.Question{q.ID: q},
	}
}

func TestRequestSingle(t *testing.T) {
	h := NewHandler(singleQuestionStore(), DefaultConfig())
	sess := testSession()

	r := h.RequestSingle(context.Background(), model.Params{}, sess)
	assert.Contains(t, r.Text, "Câu hỏi: Firewall dùng để làm gì?")
	assert.Contains(t, r.Text, "A. Lọc lưu lượng")
	assert.Contains(t, r.Text, "Hãy chọn đáp án (A, B, C, D).")

	require.Len(t, r.OutputContexts, 1)
	waiting := r.OutputContexts[0]
	assert.Equal(t, sess.ContextName(convo.KindAwaitingSingleAnswer), waiting.Name)
	assert.Equal(t, SingleAnswerLifespan, waiting.LifespanCount)

	p := model.Params(waiting.Parameters)
	assert.Equal(t, "q1", p.String("question_id"))
	assert.Equal(t, "A", p.String("correct_answer"))
	assert.NotEmpty(t, p.String("explanation"))
}

func TestRequestSingle_NoQuestions(t *testing.T) {
	h := NewHandler(&stubQuestions{}, DefaultConfig())
	r := h.RequestSingle(context.Background(), model.Params{}, testSession())
	assert.Contains(t, r.Text, "không tìm thấy câu hỏi nào")
	assert.Empty(t, r.OutputContexts)
}

func TestAnswerSingle(t *testing.T) {
	h := NewHandler(&stubQuestions{}, DefaultConfig())
	sess := testSession()

	waiting := model.Context{
		Name:          sess.ContextName(convo.KindAwaitingSingleAnswer),
		LifespanCount: 2,
		Parameters: map[string]any{
			"question_id":    "q1",
			"correct_answer": "A",
			"explanation":    "Firewall lọc lưu lượng mạng theo luật.",
		},
	}

	tests := []struct {
		name     string
		answer   string
		contexts []model.Context
		want     string
	}{
		{
			name:     "correct case insensitive",
			answer:   " a ",
			contexts: []model.Context{waiting},
			want:     "Chính xác!",
		},
		{
			name:     "incorrect",
			answer:   "B",
			contexts: []model.Context{waiting},
			want:     "Không đúng. Đáp án đúng là A.",
		},
		{
			name:   "no waiting context",
			answer: "A",
			want:   "không rõ bạn đang trả lời câu hỏi nào",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := h.AnswerSingle(context.Background(), model.Params{"answer": tt.answer}, tt.contexts, sess)
			assert.Contains(t, r.Text, tt.want)
		})
	}
}

func TestAnswerSingle_OffersAnotherQuestion(t *testing.T) {
	h := NewHandler(&stubQuestions{}, DefaultConfig())
	sess := testSession()

	waiting := model.Context{
		Name:       sess.ContextName(convo.KindAwaitingSingleAnswer),
		Parameters: map[string]any{"correct_answer": "A"},
	}
	r := h.AnswerSingle(context.Background(), model.Params{"answer": "A"}, []model.Context{waiting}, sess)
	assert.Contains(t, r.Text, "Bạn có muốn câu hỏi khác không?")
}

func TestExplainSingle(t *testing.T) {
	store := singleQuestionStore()
	h := NewHandler(store, DefaultConfig())
	sess := testSession()

	// 优先使用等待上下文里的 explanation
	waiting := model.Context{
		Name:       sess.ContextName(convo.KindAwaitingSingleAnswer),
		Parameters: map[string]any{"explanation": "Giải thích trong ngữ cảnh."},
	}
	r := h.ExplainSingle(context.Background(), model.Params{}, []model.Context{waiting}, sess)
	assert.Equal(t, "Giải thích trong ngữ cảnh.", r.Text)

	// 上下文只有 question_id 时回库补取
	anchor := model.Context{
		Name:       sess.ContextName(convo.KindAwaitingSingleAnswer),
		Parameters: map[string]any{"question_id": "q1"},
	}
	r = h.ExplainSingle(context.Background(), model.Params{}, []model.Context{anchor}, sess)
	assert.Equal(t, "Firewall lọc lưu lượng mạng theo luật.", r.Text)

	// 什么线索都没有
	r = h.ExplainSingle(context.Background(), model.Params{}, nil, sess)
	assert.Contains(t, r.Text, "không rõ bạn muốn giải thích câu hỏi nào")
}
