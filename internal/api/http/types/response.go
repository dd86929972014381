package types

import "github.com/weisyn/bcdb/pkg/types"

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string                     `json:"status"` // healthy, degraded
	NodeID     string                     `json:"node_id"`
	Version    *types.Version             `json:"version,omitempty"` // 当前快照版本，尚未提交时为空
	Uptime     string                     `json:"uptime"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth 单个组件的健康状态
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
