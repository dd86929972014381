package writer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	bootstrapconfig "github.com/weisyn/bcdb/internal/config/bootstrap"
	nodeconfig "github.com/weisyn/bcdb/internal/config/node"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/types"
)

// Genesis 尚无配置快照时从引导配置提交创世集群配置
//
// 已有快照时不做任何写入，返回当前快照；本节点不在快照中时写门闸进入只读。
func Genesis(ctx context.Context, svc *Service, node *nodeconfig.NodeOptions, boot *bootstrapconfig.BootstrapOptions, logger log.Logger) (*types.ConfigSnapshot, error) {
	snap, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取配置快照失败: %w", err)
	}
	if snap != nil {
		if snap.Config.Node(node.ID) == nil {
			logger.With(zap.String("node_id", node.ID)).Warn("本节点不在已提交的集群配置中")
			if g := svc.WriteGate(); g != nil {
				g.EnterReadOnly(fmt.Sprintf("节点 %s 不在集群配置中", node.ID))
			}
		}
		logger.With(zap.Uint64("block_num", snap.Version.BlockNum)).Info("使用已提交的集群配置")
		return snap, nil
	}

	cfg, err := BuildGenesisConfig(node, boot)
	if err != nil {
		return nil, err
	}
	logger.With(zap.String("node_id", node.ID), zap.String("admin", boot.AdminID)).Info("提交创世集群配置")
	return svc.CommitConfig(ctx, cfg)
}

// BuildGenesisConfig 读取证书文件构建单节点创世配置
func BuildGenesisConfig(node *nodeconfig.NodeOptions, boot *bootstrapconfig.BootstrapOptions) (*types.ClusterConfig, error) {
	nodeCert, err := pki.LoadCertificate(node.CertificatePath)
	if err != nil {
		return nil, fmt.Errorf("节点证书: %w", err)
	}
	adminCert, err := pki.LoadCertificate(boot.AdminCertificatePath)
	if err != nil {
		return nil, fmt.Errorf("管理员证书: %w", err)
	}

	ca := &types.CAConfig{}
	for _, p := range boot.RootCACertPaths {
		c, err := pki.LoadCertificate(p)
		if err != nil {
			return nil, fmt.Errorf("根证书: %w", err)
		}
		ca.Roots = append(ca.Roots, c.Raw)
	}
	for _, p := range boot.IntermediateCAPaths {
		c, err := pki.LoadCertificate(p)
		if err != nil {
			return nil, fmt.Errorf("中间证书: %w", err)
		}
		ca.Intermediates = append(ca.Intermediates, c.Raw)
	}

	peerHost := boot.PeerHost
	if peerHost == "" {
		peerHost = node.Address
	}

	return &types.ClusterConfig{
		Nodes: []*types.NodeConfig{{
			ID:          node.ID,
			Address:     node.Address,
			Port:        node.Port,
			Certificate: nodeCert.Raw,
		}},
		Admins: []*types.Admin{{
			ID:          boot.AdminID,
			Certificate: adminCert.Raw,
		}},
		CertAuthConfig: ca,
		ConsensusConfig: &types.ConsensusConfig{
			Algorithm: boot.ConsensusAlgorithm,
			Members: []*types.ConsensusMember{{
				NodeID:   node.ID,
				RaftID:   boot.RaftID,
				PeerHost: peerHost,
				PeerPort: boot.PeerPort,
			}},
		},
	}, nil
}
