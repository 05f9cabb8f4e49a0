package dispatch

import (
	"context"
	"log"
	"strings"

	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/fulfillment/listflow"
	"secbot-fulfillment/internal/shared/model"
)

// 组合请求的抽象动作标识
const (
	StepDefine          = "define"
	StepExample         = "example"
	StepCompare         = "compare"
	StepListTheory      = "list_theory"
	StepListMultichoice = "list_multichoice"
	StepExplainQuiz     = "explain_quiz"
)

// stepSeparator 各步骤响应文本之间的分隔符
const stepSeparator = "\n\n---\n\n"

// Combined 处理组合请求：一串抽象动作按序执行
//
// 规则：
//   - 每步的文本按序拼接，以 stepSeparator 分隔
//   - list_* 步骤把刚抽到的题目集传给紧随其后的 explain_quiz 步骤
//     （解释用刚生成的集合，不回读上下文）
//   - 所有步骤产出的上下文最后按名合并（到达顺序即决定性规则：
//     后到的步骤逐键覆盖先到的，lifespan 取最大——不按领域
//     优先级仲裁）
//   - 没有任何步骤产出上下文、但主概念解析成功时，补一个概念
//     追问锚点，供下一轮代词消解
func (d *Dispatcher) Combined(ctx context.Context, req *Request) *convo.Result {
	steps := req.Params.StringList("actions")
	if len(steps) == 0 {
		return convo.NewResult("Xin lỗi, tôi chưa hiểu bạn muốn tôi làm những gì.")
	}
	concepts := req.Params.StringList("concept")

	var texts []string
	var contexts []model.Context

	// list_* 步骤刚生成的题目集，供紧随其后的 explain_quiz 使用
	var pendingQuestions []*model.Question

	for _, step := range steps {
		var r *convo.Result
		generated := pendingQuestions
		pendingQuestions = nil

		switch strings.ToLower(strings.TrimSpace(step)) {
		case StepDefine:
			r = d.concepts.Definition(ctx, req.Params, req.Session)
		case StepExample:
			r = d.concepts.Example(ctx, req.Params, req.Session)
		case StepCompare:
			r = d.concepts.Comparison(ctx, req.Params, req.Session)
		case StepListTheory:
			r, pendingQuestions = d.lists.Generate(ctx, paramsWithType(req.Params, "theory"), req.Session)
		case StepListMultichoice:
			r, pendingQuestions = d.lists.Generate(ctx, paramsWithType(req.Params, "multiple_choice"), req.Session)
		case StepExplainQuiz:
			if len(generated) > 0 {
				r = convo.NewResult(d.lists.ExplainQuestions(generated))
			} else {
				r = d.lists.Query(ctx, req.Params, req.InputContexts, req.Session, listflow.QueryExplanation)
			}
		default:
			log.Printf("[Dispatch] Combined: skipping unknown step %q", step)
			continue
		}

		if r != nil {
			if r.Text != "" {
				texts = append(texts, r.Text)
			}
			contexts = append(contexts, r.OutputContexts...)
		}
	}

	if len(texts) == 0 {
		return convo.NewResult("Xin lỗi, tôi chưa hiểu bạn muốn tôi làm những gì.")
	}

	merged := convo.MergeContexts(contexts)

	// 回退锚点：各步骤都没留下上下文时，主概念仍可支撑下一轮追问
	if len(merged) == 0 && len(concepts) > 0 {
		if doc, err := d.concepts.Resolve(ctx, concepts[0]); err == nil && doc != nil {
			merged = append(merged, d.concepts.FollowupContext(doc, req.Session))
		}
	}

	return &convo.Result{Text: strings.Join(texts, stepSeparator), OutputContexts: merged}
}

// paramsWithType 复制参数并固定 question_type（不改动原参数表）
func paramsWithType(params model.Params, questionType string) model.Params {
	out := make(model.Params, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["question_type"] = questionType
	return out
}
