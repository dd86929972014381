// Package configsvc 向已授权的调用方分发集群配置
package configsvc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// Distributor 配置分发器
//
// 每次调用只读取一条快照记录，响应不会混合多个版本。
type Distributor struct {
	store   storage.Store
	reader  *state.Reader
	timeout time.Duration
	logger  log.Logger
}

// New 创建配置分发器，timeout 为单次快照读取的上限
func New(store storage.Store, codec *state.Codec, timeout time.Duration, logger log.Logger) *Distributor {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Distributor{
		store:   store,
		reader:  state.NewReader(codec),
		timeout: timeout,
		logger:  logger,
	}
}

// GetClusterConfig 返回当前完整的集群配置快照
func (d *Distributor) GetClusterConfig(ctx context.Context, grant *auth.Grant) (*types.ConfigSnapshot, error) {
	if err := auth.Require(grant, types.CapabilityReadConfig); err != nil {
		return nil, err
	}
	return d.snapshot(ctx)
}

// GetNodeConfig 只返回指定节点的配置
func (d *Distributor) GetNodeConfig(ctx context.Context, grant *auth.Grant, nodeID string) (*types.NodeConfig, types.Version, error) {
	if err := auth.Require(grant, types.CapabilityReadConfig); err != nil {
		return nil, types.Version{}, err
	}
	snap, err := d.snapshot(ctx)
	if err != nil {
		return nil, types.Version{}, err
	}
	n := snap.Config.Node(nodeID)
	if n == nil {
		return nil, types.Version{}, types.NotFoundf("节点 %s 不存在", nodeID)
	}
	out := &types.NodeConfig{
		ID:          n.ID,
		Address:     n.Address,
		Port:        n.Port,
		Certificate: append([]byte(nil), n.Certificate...),
	}
	return out, snap.Version, nil
}

func (d *Distributor) snapshot(ctx context.Context) (*types.ConfigSnapshot, error) {
	readCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	snap, err := state.Await(readCtx, func() (*types.ConfigSnapshot, error) {
		return d.reader.Snapshot(state.StoreGetter(readCtx, d.store))
	})
	switch {
	case err == nil && snap == nil:
		return nil, types.NotFoundf("集群配置尚未提交")
	case err == nil:
		return snap, nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return nil, err
	case errors.Is(err, context.DeadlineExceeded):
		d.logger.With(zap.Error(err)).Warn("读取配置快照超时")
		return nil, types.Unavailable("读取配置快照超时", err)
	default:
		d.logger.With(zap.Error(err)).Error("读取配置快照失败")
		return nil, types.Unavailable("读取配置快照失败", err)
	}
}
