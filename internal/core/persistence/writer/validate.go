package writer

import (
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/pkg/types"
)

// 错误定义
var (
	ErrInvalidConfig = errors.New("集群配置无效")
	ErrInvalidUser   = errors.New("用户记录无效")
	ErrNoConfig      = errors.New("集群配置尚未提交")
	ErrAdminRecord   = errors.New("管理员记录只能通过集群配置变更")
	ErrUserNotFound  = errors.New("用户不存在")
)

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func userErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidUser, fmt.Sprintf(format, args...))
}

// ValidateConfig 校验集群配置
//
// 节点和管理员非空且 ID 唯一，证书可链接到配置中的根证书，
// 共识成员必须指向已存在的节点。
func ValidateConfig(cfg *types.ClusterConfig) error {
	if cfg == nil {
		return configErrorf("配置为空")
	}
	if cfg.CertAuthConfig == nil || len(cfg.CertAuthConfig.Roots) == 0 {
		return configErrorf("缺少根证书")
	}
	ca := cfg.CertAuthConfig

	if len(cfg.Nodes) == 0 {
		return configErrorf("至少需要一个节点")
	}
	nodes := make(map[string]struct{}, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		if n == nil {
			return configErrorf("节点 %d 为空", i)
		}
		if err := canonical.ValidateString(n.ID); err != nil {
			return configErrorf("节点 %d ID 无效: %v", i, err)
		}
		if _, dup := nodes[n.ID]; dup {
			return configErrorf("节点 %s 重复", n.ID)
		}
		nodes[n.ID] = struct{}{}
		if n.Address == "" || n.Port == 0 {
			return configErrorf("节点 %s 缺少地址或端口", n.ID)
		}
		if err := checkCertificate(n.Certificate, ca); err != nil {
			return configErrorf("节点 %s 证书: %v", n.ID, err)
		}
	}

	if len(cfg.Admins) == 0 {
		return configErrorf("至少需要一个管理员")
	}
	admins := make(map[string]struct{}, len(cfg.Admins))
	for i, a := range cfg.Admins {
		if a == nil {
			return configErrorf("管理员 %d 为空", i)
		}
		if err := canonical.ValidateString(a.ID); err != nil {
			return configErrorf("管理员 %d ID 无效: %v", i, err)
		}
		if _, dup := admins[a.ID]; dup {
			return configErrorf("管理员 %s 重复", a.ID)
		}
		admins[a.ID] = struct{}{}
		if err := checkCertificate(a.Certificate, ca); err != nil {
			return configErrorf("管理员 %s 证书: %v", a.ID, err)
		}
	}

	if cc := cfg.ConsensusConfig; cc != nil {
		if cc.Algorithm == "" {
			return configErrorf("共识算法不能为空")
		}
		if len(cc.Members) == 0 {
			return configErrorf("至少需要一个共识成员")
		}
		seenNode := make(map[string]struct{})
		seenRaft := make(map[uint64]struct{})
		all := append(append([]*types.ConsensusMember{}, cc.Members...), cc.Observers...)
		for _, m := range all {
			if m == nil {
				return configErrorf("共识成员为空")
			}
			if _, ok := nodes[m.NodeID]; !ok {
				return configErrorf("共识成员 %s 不是集群节点", m.NodeID)
			}
			if _, dup := seenNode[m.NodeID]; dup {
				return configErrorf("共识成员 %s 重复", m.NodeID)
			}
			if _, dup := seenRaft[m.RaftID]; dup || m.RaftID == 0 {
				return configErrorf("共识成员 %s 的 raft_id %d 无效或重复", m.NodeID, m.RaftID)
			}
			seenNode[m.NodeID] = struct{}{}
			seenRaft[m.RaftID] = struct{}{}
			if m.PeerHost == "" || m.PeerPort == 0 {
				return configErrorf("共识成员 %s 缺少对等地址", m.NodeID)
			}
		}
	}
	return nil
}

// ValidateUser 校验非管理员用户记录
//
// 证书与原始 secp256k1 公钥二选一；证书必须链接到当前快照的根证书；
// admin 能力只能由集群配置授予。
func ValidateUser(rec *types.UserRecord, ca *types.CAConfig) error {
	if rec == nil {
		return userErrorf("记录为空")
	}
	if err := canonical.ValidateString(rec.ID); err != nil {
		return userErrorf("用户 ID 无效: %v", err)
	}
	for _, c := range rec.Capabilities {
		if !c.Valid() {
			return userErrorf("用户 %s 能力 %q 未知", rec.ID, c)
		}
		if c == types.CapabilityAdmin {
			return fmt.Errorf("%w: 用户 %s", ErrAdminRecord, rec.ID)
		}
	}

	hasCert, hasKey := len(rec.Certificate) > 0, len(rec.PublicKey) > 0
	switch {
	case hasCert == hasKey:
		return userErrorf("用户 %s 必须且只能登记证书或公钥之一", rec.ID)
	case hasCert:
		if err := checkCertificate(rec.Certificate, ca); err != nil {
			return userErrorf("用户 %s 证书: %v", rec.ID, err)
		}
	default:
		if _, err := key.ParseSecp256k1PublicKey(rec.PublicKey); err != nil {
			return userErrorf("用户 %s 公钥: %v", rec.ID, err)
		}
	}
	return nil
}

func checkCertificate(der []byte, ca *types.CAConfig) error {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return err
	}
	if _, err := key.AlgorithmOf(cert.PublicKey); err != nil {
		return err
	}
	return pki.VerifyChain(cert, ca.Roots, ca.Intermediates)
}
