// Package transport bcdb 节点的 REST 客户端
//
// 客户端在本地规范化并签名查询，按 UserID/Signature 头发送，
// 再用期望节点的证书校验节点签名的响应。
package transport

import (
	"context"
	"crypto"
	"crypto/x509"

	"github.com/weisyn/bcdb/pkg/types"
)

// Client 节点查询客户端
type Client interface {
	// GetClusterConfig GET /config/tx
	GetClusterConfig(ctx context.Context) (*types.GetConfigResponse, error)

	// GetNodeConfig GET /config/node/{node_id}
	GetNodeConfig(ctx context.Context, nodeID string) (*types.NodeConfig, error)

	// GetUser GET /user/{user_id}
	GetUser(ctx context.Context, userID string) (*types.GetUserResponse, error)

	// Ping 检查节点是否可达
	Ping(ctx context.Context) error

	// NodeID 应答节点的 ID
	NodeID() string
}

// Identity 发起请求的用户身份
type Identity struct {
	UserID string
	Signer crypto.Signer
}

// Endpoint 一个节点的访问地址及用于验签的证书
type Endpoint struct {
	NodeID      string
	URL         string
	Certificate *x509.Certificate
	Priority    int // 数字越小越优先
}
