// Package client bcdb 客户端入口
//
// 每个查询都用调用者私钥签名，每个响应都用应答节点的证书验签。
package client

import (
	"context"
	"time"

	"github.com/weisyn/bcdb/client/core/config"
	"github.com/weisyn/bcdb/client/core/transport"
	"github.com/weisyn/bcdb/pkg/types"
)

// Client bcdb 客户端
type Client struct {
	transport transport.Client
}

// New 连接单个节点
func New(endpoint transport.Endpoint, identity transport.Identity) (*Client, error) {
	return NewWithTimeout(endpoint, identity, 30*time.Second)
}

// NewWithTimeout 连接单个节点并指定请求超时
func NewWithTimeout(endpoint transport.Endpoint, identity transport.Identity, timeout time.Duration) (*Client, error) {
	t, err := transport.NewRESTClient(endpoint, identity, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{transport: t}, nil
}

// NewFromProfile 按 Profile 连接多个节点，节点不可用时自动切换
func NewFromProfile(p *config.Profile, passphrase []byte) (*Client, error) {
	cc, err := p.ClientConfig(passphrase)
	if err != nil {
		return nil, err
	}
	t, err := transport.NewFallbackClient(cc)
	if err != nil {
		return nil, err
	}
	return &Client{transport: t}, nil
}

// NewWithTransport 使用自定义 transport 创建客户端
func NewWithTransport(t transport.Client) *Client {
	return &Client{transport: t}
}

// Transport 获取底层的 transport 客户端
func (c *Client) Transport() transport.Client {
	return c.transport
}

// NodeID 当前应答节点
func (c *Client) NodeID() string {
	return c.transport.NodeID()
}

// ClusterConfig 当前集群配置及其版本
func (c *Client) ClusterConfig(ctx context.Context) (*types.ClusterConfig, types.Version, error) {
	resp, err := c.transport.GetClusterConfig(ctx)
	if err != nil {
		return nil, types.Version{}, err
	}
	return resp.Config, resp.Version, nil
}

// NodeConfig 指定节点的配置
func (c *Client) NodeConfig(ctx context.Context, nodeID string) (*types.NodeConfig, error) {
	return c.transport.GetNodeConfig(ctx, nodeID)
}

// User 用户记录；非管理员只能读取自己的记录
func (c *Client) User(ctx context.Context, userID string) (*types.UserView, types.Version, error) {
	resp, err := c.transport.GetUser(ctx, userID)
	if err != nil {
		return nil, types.Version{}, err
	}
	return resp.User, resp.Version, nil
}

// Ping 检查节点可达
func (c *Client) Ping(ctx context.Context) error {
	return c.transport.Ping(ctx)
}

// Close 释放后台资源
func (c *Client) Close() {
	if fc, ok := c.transport.(*transport.FallbackClient); ok {
		fc.Close()
	}
}
