// Package dispatch 意图分发与响应组装
//
// 把入站 action 标识映射到唯一的领域处理器，或映射到组合请求
// 处理器（一串抽象动作按序执行、文本拼接、上下文按名合并）。
// 未识别的 action 产生固定的"未支持"回复，绝不向平台抛错。
package dispatch

import (
	"context"
	"fmt"

	"secbot-fulfillment/internal/fulfillment/concept"
	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/fulfillment/listflow"
	"secbot-fulfillment/internal/fulfillment/quiz"
	"secbot-fulfillment/internal/shared/model"
)

// Request 一次 webhook 轮次的处理器输入
type Request struct {
	Params        model.Params
	InputContexts []model.Context
	Session       convo.SessionInfo
}

// HandlerFunc 领域处理器的统一签名
type HandlerFunc func(ctx context.Context, req *Request) *convo.Result

// Dispatcher 意图分发器
type Dispatcher struct {
	concepts *concept.Handler
	quizzes  *quiz.Handler
	lists    *listflow.Handler

	routes map[string]HandlerFunc
}

// NewDispatcher 创建分发器并注册路由表
//
// 每个动作注册两个键：action 标识（分发首选）和 Dialogflow
// 意图显示名（历史遗留的回退键）。
func NewDispatcher(concepts *concept.Handler, quizzes *quiz.Handler, lists *listflow.Handler) *Dispatcher {
	d := &Dispatcher{concepts: concepts, quizzes: quizzes, lists: lists}
	d.routes = map[string]HandlerFunc{}

	register := func(h HandlerFunc, keys ...string) {
		for _, k := range keys {
			d.routes[k] = h
		}
	}

	// 概念问答
	register(func(ctx context.Context, req *Request) *convo.Result {
		return concepts.Definition(ctx, req.Params, req.Session)
	}, "concept.define", "AskDefinition")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return concepts.Example(ctx, req.Params, req.Session)
	}, "concept.example", "AskExample_Direct", "AskExample_FollowUp")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return concepts.Comparison(ctx, req.Params, req.Session)
	}, "concept.compare", "AskComparison")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return concepts.Explain(ctx, req.Params, req.Session)
	}, "concept.explain", "AskExplainConcept")

	// 单题问答
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.RequestSingle(ctx, req.Params, req.Session)
	}, "question.single", "RequestSingleQuestion")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.AnswerSingle(ctx, req.Params, req.InputContexts, req.Session)
	}, "question.single.answer", "AnswerSingleQuestion")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.ExplainSingle(ctx, req.Params, req.InputContexts, req.Session)
	}, "question.single.explain", "ExplainSingleQuestion")

	// 测验
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.Start(ctx, req.Params, req.Session)
	}, "quiz.start", "StartQuiz")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.Answer(ctx, req.Params, req.InputContexts, req.Session)
	}, "quiz.answer", "AnswerQuizQuestion")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return quizzes.End(ctx, req.Params, req.InputContexts, req.Session)
	}, "quiz.end", "EndQuiz")

	// 题目列表追问
	register(func(ctx context.Context, req *Request) *convo.Result {
		return lists.GenerateList(ctx, req.Params, req.Session)
	}, "list.generate", "RequestQuestionList")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return lists.Query(ctx, req.Params, req.InputContexts, req.Session, listflow.QueryAnswer)
	}, "list.answers", "AskAnswerForList")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return lists.Query(ctx, req.Params, req.InputContexts, req.Session, listflow.QueryExplanation)
	}, "list.explanations", "AskExplanationForList")
	register(func(ctx context.Context, req *Request) *convo.Result {
		return lists.SubmitAnswers(ctx, req.Params, req.InputContexts, req.Session)
	}, "list.check", "CheckListAnswers")

	// 组合请求
	register(d.Combined, "combined.request", "CombinedRequest")

	return d
}

// Dispatch 按 action（回退：意图显示名）分发一轮请求
//
// 返回前对输出上下文做按名合并，保证同名上下文只出现一次。
func (d *Dispatcher) Dispatch(ctx context.Context, action, intentName string, req *Request) *convo.Result {
	h, ok := d.routes[action]
	if !ok {
		h, ok = d.routes[intentName]
	}
	if !ok {
		name := action
		if name == "" {
			name = intentName
		}
		return convo.NewResult(fmt.Sprintf("Tôi chưa được lập trình để xử lý yêu cầu %q.", name))
	}

	r := h(ctx, req)
	r.OutputContexts = convo.MergeContexts(r.OutputContexts)
	return r
}
