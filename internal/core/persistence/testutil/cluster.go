// Package testutil 为测试构建带有 CA、节点、管理员和用户的已提交集群状态
package testutil

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	memoryconfig "github.com/weisyn/bcdb/internal/config/storage/memory"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/signature"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/internal/core/persistence/writer"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// AdminID 测试集群的管理员
const AdminID = "admin"

// Member 持有私钥的节点或用户
type Member struct {
	ID          string
	Signer      crypto.Signer
	Certificate *x509.Certificate // secp256k1 用户为 nil
}

// Cluster 测试集群
type Cluster struct {
	CA       *pki.CA
	Store    storage.Store
	Codec    *state.Codec
	Writer   *writer.Service
	Nodes    []*Member
	Admin    *Member
	Users    map[string]*Member
	Snapshot *types.ConfigSnapshot
}

// NewStore 创建测试用内存存储
func NewStore(t testing.TB) storage.Store {
	t.Helper()
	store, err := memory.New(memoryconfig.New(&types.UserStorageConfig{
		MemoryShards: types.IntPtr(8),
		MemoryMaxMB:  types.IntPtr(16),
	}), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewCluster 创建并提交集群配置，未给出节点时使用 bdb-node-1..3
func NewCluster(t testing.TB, nodeIDs ...string) *Cluster {
	t.Helper()
	if len(nodeIDs) == 0 {
		nodeIDs = []string{"bdb-node-1", "bdb-node-2", "bdb-node-3"}
	}

	ca, err := pki.NewCA("bcdb-test-ca", key.AlgorithmECDSAP256)
	require.NoError(t, err)

	c := &Cluster{
		CA:    ca,
		Store: NewStore(t),
		Codec: state.NewCodec(true),
		Users: make(map[string]*Member),
	}
	c.Writer = writer.NewService(c.Store, c.Codec, nil, logimpl.NewNop())

	cfg := &types.ClusterConfig{
		CertAuthConfig:  &types.CAConfig{Roots: [][]byte{ca.Certificate.Raw}},
		ConsensusConfig: &types.ConsensusConfig{Algorithm: "raft"},
	}
	for i, id := range nodeIDs {
		m := c.issue(t, id, key.AlgorithmECDSAP256)
		c.Nodes = append(c.Nodes, m)
		cfg.Nodes = append(cfg.Nodes, &types.NodeConfig{
			ID:          id,
			Address:     fmt.Sprintf("10.0.0.%d", i+1),
			Port:        uint32(6001 + i),
			Certificate: m.Certificate.Raw,
		})
		cfg.ConsensusConfig.Members = append(cfg.ConsensusConfig.Members, &types.ConsensusMember{
			NodeID:   id,
			RaftID:   uint64(i + 1),
			PeerHost: fmt.Sprintf("10.0.0.%d", i+1),
			PeerPort: uint32(7050 + i),
		})
	}

	c.Admin = c.issue(t, AdminID, key.AlgorithmECDSAP256)
	cfg.Admins = []*types.Admin{{ID: AdminID, Certificate: c.Admin.Certificate.Raw}}
	c.Users[AdminID] = c.Admin

	c.Snapshot, err = c.Writer.CommitConfig(context.Background(), cfg)
	require.NoError(t, err)
	return c
}

// Node 按 ID 查找节点
func (c *Cluster) Node(id string) *Member {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// AddUser 提交一个非管理员用户
func (c *Cluster) AddUser(t testing.TB, id string, alg key.Algorithm, caps ...types.Capability) *Member {
	t.Helper()
	rec := &types.UserRecord{ID: id, Capabilities: caps}

	var m *Member
	if alg == key.AlgorithmSecp256k1 {
		signer, err := key.Generate(alg)
		require.NoError(t, err)
		m = &Member{ID: id, Signer: signer}
		rec.PublicKey = signer.(key.Secp256k1PrivateKey).PubKey().SerializeCompressed()
	} else {
		m = c.issue(t, id, alg)
		rec.Certificate = m.Certificate.Raw
	}

	_, err := c.Writer.CommitUsers(context.Background(), []*types.UserRecord{rec}, nil)
	require.NoError(t, err)
	c.Users[id] = m
	return m
}

// RotateCA 换用新的根证书，重新签发节点与管理员证书并提交；已登记的用户证书保持不变
func (c *Cluster) RotateCA(t testing.TB) {
	t.Helper()
	ca, err := pki.NewCA("bcdb-test-ca-2", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	c.CA = ca

	cfg := *c.Snapshot.Config
	cfg.CertAuthConfig = &types.CAConfig{Roots: [][]byte{ca.Certificate.Raw}}
	cfg.Nodes = make([]*types.NodeConfig, 0, len(c.Nodes))
	for i, old := range c.Snapshot.Config.Nodes {
		m := c.issue(t, old.ID, key.AlgorithmECDSAP256)
		c.Nodes[i] = m
		nc := *old
		nc.Certificate = m.Certificate.Raw
		cfg.Nodes = append(cfg.Nodes, &nc)
	}
	c.Admin = c.issue(t, AdminID, key.AlgorithmECDSAP256)
	cfg.Admins = []*types.Admin{{ID: AdminID, Certificate: c.Admin.Certificate.Raw}}
	c.Users[AdminID] = c.Admin

	c.Snapshot, err = c.Writer.CommitConfig(context.Background(), &cfg)
	require.NoError(t, err)
}

// Sign 规范化查询并用成员私钥签名
func (c *Cluster) Sign(t testing.TB, m *Member, q canonical.Query) []byte {
	t.Helper()
	payload, err := q.Canonical()
	require.NoError(t, err)
	sig, err := signature.Sign(m.Signer, payload)
	require.NoError(t, err)
	return sig
}

func (c *Cluster) issue(t testing.TB, id string, alg key.Algorithm) *Member {
	t.Helper()
	signer, err := key.Generate(alg)
	require.NoError(t, err)
	cert, err := c.CA.Issue(id, signer.Public())
	require.NoError(t, err)
	return &Member{ID: id, Signer: signer, Certificate: cert}
}
