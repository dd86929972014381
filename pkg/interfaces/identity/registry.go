// Package identity 定义身份注册表接口
package identity

import (
	"context"

	"github.com/weisyn/bcdb/pkg/types"
)

// Registry 用户与节点身份的只读视图
//
// 始终反映当前已提交状态，不缓存。查询超时或存储故障返回 KindUnavailable，
// 不存在返回 KindNotFound。实现必须支持并发调用。
type Registry interface {
	// Resolve 解析用户身份
	Resolve(ctx context.Context, userID string) (*types.Identity, error)

	// ResolveNode 解析节点身份
	ResolveNode(ctx context.Context, nodeID string) (*types.Node, error)
}
