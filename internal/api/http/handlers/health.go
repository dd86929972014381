package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apitypes "github.com/weisyn/bcdb/internal/api/http/types"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
)

// healthCheckTimeout 单次存储探测上限
const healthCheckTimeout = 2 * time.Second

// HealthHandler 健康检查与指标导出
type HealthHandler struct {
	nodeID    string
	store     storage.Store
	reader    *state.Reader
	gatherer  prometheus.Gatherer
	gate      writegate.WriteGate
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器，gatherer 为 nil 时不注册 /metrics，gate 可以为 nil
func NewHealthHandler(nodeID string, store storage.Store, codec *state.Codec, gatherer prometheus.Gatherer, gate writegate.WriteGate) *HealthHandler {
	return &HealthHandler{
		nodeID:    nodeID,
		store:     store,
		reader:    state.NewReader(codec),
		gatherer:  gatherer,
		gate:      gate,
		startTime: time.Now(),
	}
}

// RegisterRoutes 注册 /health 与 /metrics，两者都不需要签名
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.GetHealth)
	r.GET("/health/live", h.GetLiveness)
	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

// GetHealth GET /health
//
// 存储不可达时返回 503；已提交快照的版本一并返回。
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := apitypes.HealthResponse{
		Status:     "healthy",
		NodeID:     h.nodeID,
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: make(map[string]apitypes.ComponentHealth),
	}

	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Components["storage"] = apitypes.ComponentHealth{Status: "unhealthy", Error: err.Error()}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Components["storage"] = apitypes.ComponentHealth{Status: "healthy"}

	snap, err := h.reader.Snapshot(state.StoreGetter(ctx, h.store))
	switch {
	case err != nil:
		resp.Status = "degraded"
		resp.Components["config"] = apitypes.ComponentHealth{Status: "unhealthy", Error: err.Error()}
	case snap == nil:
		resp.Status = "degraded"
		resp.Components["config"] = apitypes.ComponentHealth{Status: "missing"}
	default:
		resp.Version = &snap.Version
		resp.Components["config"] = apitypes.ComponentHealth{Status: "healthy"}
	}

	// 只读节点仍可服务查询
	if h.gate != nil {
		if h.gate.IsReadOnly() {
			resp.Status = "degraded"
			resp.Components["writes"] = apitypes.ComponentHealth{Status: "read_only", Error: h.gate.ReadOnlyReason()}
		} else {
			resp.Components["writes"] = apitypes.ComponentHealth{Status: "healthy"}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetLiveness GET /health/live，只表示进程仍能响应
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
