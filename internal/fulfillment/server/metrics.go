// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics webhook 服务指标
//
// 使用独立 Registry 而不是全局默认注册表，测试里可以反复
// 创建 Handler 而不触发重复注册 panic。
type Metrics struct {
	registry *prometheus.Registry

	// WebhookRequestsTotal 按 action 维度的请求计数
	WebhookRequestsTotal *prometheus.CounterVec

	// WebhookRequestDuration 按 action 维度的处理耗时
	WebhookRequestDuration *prometheus.HistogramVec
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_requests_total",
				Help:      "Total webhook requests by action",
			},
			[]string{"action"},
		),
		WebhookRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "webhook_request_duration_seconds",
				Help:      "Webhook request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"action"},
		),
	}
}

// Observe 记录一次请求
func (m *Metrics) Observe(action string, elapsed time.Duration) {
	if action == "" {
		action = "unknown"
	}
	m.WebhookRequestsTotal.WithLabelValues(action).Inc()
	m.WebhookRequestDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// HTTPHandler 返回 /metrics 的处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
