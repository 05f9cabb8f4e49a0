package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secbot-fulfillment/internal/fulfillment/listflow"
	"secbot-fulfillment/internal/fulfillment/quiz"
	"secbot-fulfillment/internal/shared/cache"
	"secbot-fulfillment/internal/shared/model"
	"secbot-fulfillment/internal/shared/storage/memstore"
)

func newTestHandler() *Handler {
	concepts := []*model.Concept{
		{ID: "firewall", Name: "Firewall", Definition: "Hệ thống kiểm soát lưu lượng mạng."},
	}
	questions := []*model.Question{
		{ID: "q1", Content: "Firewall hoạt động ở đâu?", Type: model.QuestionMultipleChoice,
			Options: []string{"A. Biên mạng", "B. Trình duyệt"}, CorrectAnswer: "A"},
	}
	return NewHandler(memstore.NewStore(concepts, questions), cache.NewMemoryCache(), Options{
		DefaultProjectID: "default-project",
		Quiz:             quiz.DefaultConfig(),
		List:             listflow.DefaultConfig(),
	})
}

func postWebhook(t *testing.T, router http.Handler, req *model.WebhookRequest) (*httptest.ResponseRecorder, *model.WebhookResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	var resp model.WebhookResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, &resp
}

func TestWebhook_ConceptDefinition(t *testing.T) {
	router := newTestHandler().Router()

	w, resp := postWebhook(t, router, &model.WebhookRequest{
		Session: "projects/my-proj/agent/sessions/abc",
		QueryResult: model.QueryResult{
			Action:     "concept.define",
			Parameters: map[string]any{"concept": "firewall"},
			Intent:     model.Intent{DisplayName: "AskDefinition"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.FulfillmentMessages, 1)
	require.Len(t, resp.FulfillmentMessages[0].Text.Text, 1)
	assert.Contains(t, resp.FulfillmentMessages[0].Text.Text[0], "Hệ thống kiểm soát lưu lượng mạng.")

	// 锚点上下文写在解析出的会话路径下
	require.Len(t, resp.OutputContexts, 1)
	assert.True(t, strings.HasPrefix(resp.OutputContexts[0].Name, "projects/my-proj/agent/sessions/abc/contexts/"))
}

// TestWebhook_QuizRoundTrip 通过 HTTP 信封走完一轮测验交互
func TestWebhook_QuizRoundTrip(t *testing.T) {
	router := newTestHandler().Router()
	session := "projects/my-proj/agent/sessions/quiz-1"

	w, resp := postWebhook(t, router, &model.WebhookRequest{
		Session: session,
		QueryResult: model.QueryResult{
			Action:     "quiz.start",
			Parameters: map[string]any{"number": 1.0},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.FulfillmentMessages[0].Text.Text[0], "Bắt đầu bài thi! (1 câu)")
	require.Len(t, resp.OutputContexts, 1)

	// 平台把输出上下文作为下一轮的输入上下文送回
	w, resp = postWebhook(t, router, &model.WebhookRequest{
		Session: session,
		QueryResult: model.QueryResult{
			Action:         "quiz.answer",
			Parameters:     map[string]any{"answer": "A"},
			OutputContexts: resp.OutputContexts,
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.FulfillmentMessages[0].Text.Text[0], "1/1 câu (100%)")
}

func TestWebhook_UnknownAction(t *testing.T) {
	router := newTestHandler().Router()

	w, resp := postWebhook(t, router, &model.WebhookRequest{
		Session:     "projects/p/agent/sessions/s",
		QueryResult: model.QueryResult{Action: "weather.today"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.FulfillmentMessages[0].Text.Text[0], "Tôi chưa được lập trình")
}

func TestWebhook_BadJSON(t *testing.T) {
	router := newTestHandler().Router()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{{{not json"))
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestWebhook_MalformedSession 畸形会话串退回默认 project id
func TestWebhook_MalformedSession(t *testing.T) {
	router := newTestHandler().Router()

	w, resp := postWebhook(t, router, &model.WebhookRequest{
		Session: "not-a-session-path",
		QueryResult: model.QueryResult{
			Action:     "concept.define",
			Parameters: map[string]any{"concept": "firewall"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.OutputContexts, 1)
	assert.True(t, strings.HasPrefix(resp.OutputContexts[0].Name,
		"projects/default-project/agent/sessions/not-a-session-path/contexts/"))
}

func TestHealth(t *testing.T) {
	router := newTestHandler().Router()

	for _, path := range []string{"/health", "/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Webhook server is running")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler()
	router := h.Router()

	// 先打一次 webhook 产生指标
	postWebhook(t, router, &model.WebhookRequest{
		Session:     "projects/p/agent/sessions/s",
		QueryResult: model.QueryResult{Action: "concept.define", Parameters: map[string]any{"concept": "firewall"}},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "secbot_webhook_requests_total")
}
