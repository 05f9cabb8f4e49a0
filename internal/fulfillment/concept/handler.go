// Package concept 概念问答领域 - 定义 / 示例 / 对比 / 详解
package concept

import (
	"context"
	"fmt"
	"log"
	"strings"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// ConceptFollowupLifespan 概念追问锚点上下文的存活轮数
const ConceptFollowupLifespan = 2

// maxExamples 单次回复最多展示的示例数
const maxExamples = 2

// Handler 概念问答处理器
type Handler struct {
	concepts storage.ConceptStore
}

// NewHandler 创建概念问答处理器
func NewHandler(concepts storage.ConceptStore) *Handler {
	return &Handler{concepts: concepts}
}

// Definition 回答"X là gì"（概念定义）类请求
func (h *Handler) Definition(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	term := params.String("concept")
	if term == "" {
		return convo.NewResult("Xin lỗi, bạn muốn hỏi về khái niệm nào?")
	}

	doc, err := h.concepts.FindConcept(ctx, term)
	if err != nil {
		log.Printf("[Concept] Definition lookup %q error: %v", term, err)
		return convo.NewResult("Đã có lỗi xảy ra khi tìm định nghĩa.")
	}
	if doc == nil || doc.Definition == "" {
		return convo.NewResult(fmt.Sprintf("Xin lỗi, tôi chưa tìm thấy định nghĩa cho %q.", term))
	}

	r := convo.NewResult(fmt.Sprintf("%s:\n%s", doc.DisplayName(), doc.Definition))
	return r.WithContext(h.FollowupContext(doc, sess))
}

// Explain 回答概念详解类请求（无详解时退回定义）
func (h *Handler) Explain(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	term := params.String("concept")
	if term == "" {
		return convo.NewResult("Xin lỗi, bạn muốn tôi giải thích khái niệm nào?")
	}

	doc, err := h.concepts.FindConcept(ctx, term)
	if err != nil {
		log.Printf("[Concept] Explain lookup %q error: %v", term, err)
		return convo.NewResult("Đã có lỗi xảy ra khi tìm giải thích.")
	}
	if doc == nil {
		return convo.NewResult(fmt.Sprintf("Xin lỗi, tôi chưa có thông tin về %q.", term))
	}

	text := doc.ExplanationDetailed
	if text == "" {
		text = doc.Definition
	}
	if text == "" {
		return convo.NewResult(fmt.Sprintf("Xin lỗi, tôi chưa có giải thích chi tiết cho %q.", doc.DisplayName()))
	}

	r := convo.NewResult(fmt.Sprintf("%s:\n%s", doc.DisplayName(), text))
	return r.WithContext(h.FollowupContext(doc, sess))
}

// Example 回答概念示例类请求
//
// example_type 槽位可选；要求的类型没有示例时退回全部类型并说明。
func (h *Handler) Example(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	term := params.String("concept")
	exampleType := params.String("example_type")
	if term == "" {
		return convo.NewResult("Xin lỗi, bạn muốn xem ví dụ về khái niệm nào?")
	}

	doc, err := h.concepts.FindConcept(ctx, term)
	if err != nil {
		log.Printf("[Concept] Example lookup %q error: %v", term, err)
		return convo.NewResult("Đã có lỗi xảy ra khi tìm ví dụ.")
	}
	if doc == nil || len(doc.Examples) == 0 {
		return convo.NewResult(fmt.Sprintf("Xin lỗi, tôi chưa tìm thấy ví dụ nào cho %q.", term))
	}

	examples := doc.Examples
	var header string
	if exampleType != "" {
		filtered := doc.ExamplesOfType(exampleType)
		if len(filtered) > 0 {
			examples = filtered
			header = fmt.Sprintf("Đây là ví dụ về %s:", doc.DisplayName())
		} else {
			header = fmt.Sprintf("Tôi không có ví dụ loại %q cho %s. Đây là các ví dụ khác:", exampleType, doc.DisplayName())
		}
	} else {
		header = fmt.Sprintf("Đây là ví dụ về %s:", doc.DisplayName())
	}

	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	lines := make([]string, 0, len(examples))
	for _, ex := range examples {
		lines = append(lines, "- "+ex.Content)
	}

	r := convo.NewResult(header + "\n" + strings.Join(lines, "\n"))
	return r.WithContext(h.FollowupContext(doc, sess))
}

// Comparison 回答两概念对比类请求
//
// 对比文本先在第一个概念的 comparison_points 里找第二个概念，
// 找不到再反向查找。
func (h *Handler) Comparison(ctx context.Context, params model.Params, sess convo.SessionInfo) *convo.Result {
	concepts := params.StringList("concept")
	if len(concepts) < 2 {
		return convo.NewResult("Xin lỗi, bạn muốn so sánh giữa hai khái niệm nào?")
	}
	first, second := concepts[0], concepts[1]

	text, err := h.comparisonText(ctx, first, second)
	if err != nil {
		log.Printf("[Concept] Comparison %q vs %q error: %v", first, second, err)
		return convo.NewResult("Đã có lỗi xảy ra khi tìm thông tin so sánh.")
	}
	if text == "" {
		return convo.NewResult(fmt.Sprintf("Xin lỗi, tôi chưa có thông tin so sánh trực tiếp giữa %q và %q.", first, second))
	}
	return convo.NewResult(text)
}

func (h *Handler) comparisonText(ctx context.Context, first, second string) (string, error) {
	doc, err := h.concepts.FindConcept(ctx, first)
	if err != nil {
		return "", err
	}
	if doc != nil {
		if text := doc.ComparisonWith(second); text != "" {
			return text, nil
		}
	}

	doc, err = h.concepts.FindConcept(ctx, second)
	if err != nil {
		return "", err
	}
	if doc != nil {
		if text := doc.ComparisonWith(first); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// Resolve 查找概念（组合请求的回退锚点判定用）
func (h *Handler) Resolve(ctx context.Context, term string) (*model.Concept, error) {
	return h.concepts.FindConcept(ctx, term)
}

// FollowupContext 构造概念追问锚点上下文
//
// 下一轮"nó"/"khái niệm này"等代词通过该上下文的 concept 参数消解。
func (h *Handler) FollowupContext(doc *model.Concept, sess convo.SessionInfo) model.Context {
	identifier := doc.ID
	if identifier == "" {
		identifier = doc.Name
	}
	return model.Context{
		Name:          sess.ContextName(convo.KindConceptDefined),
		LifespanCount: ConceptFollowupLifespan,
		Parameters:    map[string]any{"concept": identifier},
	}
}
