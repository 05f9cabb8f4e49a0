// Package server 提供 webhook HTTP 入口
//
// 文件组织：
//   - common.go: 通用工具函数
//   - handler.go: Handler 定义与 webhook 处理
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"
)

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 将错误信息以 JSON 格式写入 HTTP 响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
