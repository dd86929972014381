package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/weisyn/bcdb/internal/api/http/middleware"
	"github.com/weisyn/bcdb/internal/core/configsvc"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/pkg/types"
)

// ConfigHandlers 集群配置查询
type ConfigHandlers struct {
	distributor *configsvc.Distributor
	signer      *response.Signer
}

// NewConfigHandlers 创建配置查询处理器
func NewConfigHandlers(distributor *configsvc.Distributor, signer *response.Signer) *ConfigHandlers {
	return &ConfigHandlers{distributor: distributor, signer: signer}
}

// RegisterRoutes 注册路由
//
//	GET /config/tx             签名内容 {"user_id":"<u>"}
//	GET /config/node/:nodeId   签名内容 {"user_id":"<u>","node_id":"<n>"}
func (h *ConfigHandlers) RegisterRoutes(r gin.IRouter, sig *middleware.SignatureValidation) {
	g := r.Group("/config")
	g.GET("/tx", sig.Require(types.CapabilityReadConfig, ClusterConfigQuery), h.GetClusterConfig)
	g.GET("/node/:nodeId", sig.Require(types.CapabilityReadConfig, NodeConfigQuery), h.GetNodeConfig)
}

// ClusterConfigQuery GET /config/tx 的规范查询
func ClusterConfigQuery(_ *gin.Context, userID string) canonical.Query {
	return canonical.GetConfigQuery{UserID: userID}
}

// NodeConfigQuery GET /config/node/:nodeId 的规范查询
func NodeConfigQuery(c *gin.Context, userID string) canonical.Query {
	return canonical.GetNodeConfigQuery{UserID: userID, NodeID: c.Param("nodeId")}
}

// GetClusterConfig GET /config/tx
func (h *ConfigHandlers) GetClusterConfig(c *gin.Context) {
	snap, err := h.distributor.GetClusterConfig(c.Request.Context(), middleware.GetGrant(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	writeSigned(c, h.signer, &types.GetConfigResponse{
		Header:  h.signer.Header(),
		Config:  snap.Config,
		Version: snap.Version,
	})
}

// GetNodeConfig GET /config/node/:nodeId
func (h *ConfigHandlers) GetNodeConfig(c *gin.Context) {
	node, _, err := h.distributor.GetNodeConfig(c.Request.Context(), middleware.GetGrant(c), c.Param("nodeId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	writeSigned(c, h.signer, &types.GetNodeConfigResponse{
		Header:     h.signer.Header(),
		NodeConfig: node,
	})
}
