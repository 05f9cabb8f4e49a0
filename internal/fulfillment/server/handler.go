package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"secbot-fulfillment/internal/fulfillment/concept"
	"secbot-fulfillment/internal/fulfillment/convo"
	"secbot-fulfillment/internal/fulfillment/dispatch"
	"secbot-fulfillment/internal/fulfillment/listflow"
	"secbot-fulfillment/internal/fulfillment/quiz"
	"secbot-fulfillment/internal/shared/cache"
	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage"
)

// fallbackMessage 未预期异常时的兜底回复
const fallbackMessage = "Rất tiếc, đã có lỗi xảy ra trong quá trình xử lý yêu cầu của bạn."

// Options Handler 的装配选项
type Options struct {
	// DefaultProjectID 会话路径解析失败时的回退 project id
	DefaultProjectID string

	Quiz quiz.Config
	List listflow.Config
}

// Handler webhook 服务入口
//
// 负责：
//   - 解码 Dialogflow 请求信封、解析会话路径
//   - 把请求交给分发器，组装响应信封
//   - 兜底未预期异常（丢弃在途上下文变更）
type Handler struct {
	store      storage.PersistentStore
	dispatcher *dispatch.Dispatcher
	metrics    *Metrics

	defaultProjectID string
}

// NewHandler 创建 webhook Handler
//
// conceptCache 为 nil 时退化为无缓存（NoOp）。
func NewHandler(store storage.PersistentStore, conceptCache cache.ConceptCache, opts Options) *Handler {
	if conceptCache == nil {
		conceptCache = cache.NewNoOpCache()
	}
	conceptStore := storage.NewCachedConceptStore(store, conceptCache)

	concepts := concept.NewHandler(conceptStore)
	quizzes := quiz.NewHandler(store, opts.Quiz)
	lists := listflow.NewHandler(store, opts.List)

	return &Handler{
		store:            store,
		dispatcher:       dispatch.NewDispatcher(concepts, quizzes, lists),
		metrics:          NewMetrics("secbot"),
		defaultProjectID: opts.DefaultProjectID,
	}
}

// Router 构建路由
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", h.Webhook)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /{$}", h.Health)
	mux.Handle("GET /metrics", h.metrics.HTTPHandler())
	return mux
}

// Webhook 处理一轮 fulfillment 请求
//
// 信封解码成功后永远回 HTTP 200 + fulfillment 文本——平台没有
// 其他渠道向用户展示失败。未预期异常产生兜底消息和空上下文
// 列表（丢弃在途变更，避免持久化半成品状态）。
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req model.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action := req.QueryResult.Action
	intentName := req.QueryResult.Intent.DisplayName
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Webhook] panic handling intent %q (action %q): %v", intentName, action, rec)
			writeJSON(w, http.StatusOK, model.NewTextResponse(fallbackMessage, nil))
		}
	}()

	sess := convo.ParseSessionPath(req.Session, h.defaultProjectID)
	log.Printf("[Webhook] intent=%q action=%q session=%s", intentName, action, sess.SessionID)

	result := h.dispatcher.Dispatch(r.Context(), action, intentName, &dispatch.Request{
		Params:        model.Params(req.QueryResult.Parameters),
		InputContexts: req.QueryResult.OutputContexts,
		Session:       sess,
	})

	label := action
	if label == "" {
		label = intentName
	}
	h.metrics.Observe(label, time.Since(start))

	writeJSON(w, http.StatusOK, model.NewTextResponse(result.Text, result.OutputContexts))
}

// Health 健康检查接口
//
// 路由: GET /health（以及根路径）
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Webhook server is running"})
}
