package writer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	eventimpl "github.com/weisyn/bcdb/internal/core/infrastructure/event"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/infrastructure/writegate"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/internal/core/persistence/testutil"
	"github.com/weisyn/bcdb/internal/core/persistence/writer"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	wgif "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/bcdb/pkg/types"
)

func cloneConfig(cfg *types.ClusterConfig) *types.ClusterConfig {
	out := *cfg
	out.Nodes = append([]*types.NodeConfig(nil), cfg.Nodes...)
	out.Admins = append([]*types.Admin(nil), cfg.Admins...)
	cc := *cfg.ConsensusConfig
	cc.Members = append([]*types.ConsensusMember(nil), cfg.ConsensusConfig.Members...)
	out.ConsensusConfig = &cc
	return &out
}

func TestCommitConfig_GenesisState(t *testing.T) {
	c := testutil.NewCluster(t)
	ctx := context.Background()

	assert.Equal(t, types.Version{BlockNum: 1}, c.Snapshot.Version)
	assert.NotEmpty(t, c.Snapshot.TxID)

	reader := state.NewReader(c.Codec)
	admin, err := reader.User(state.StoreGetter(ctx, c.Store), testutil.AdminID)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, []types.Capability{types.CapabilityAdmin}, admin.Capabilities)
	assert.Equal(t, c.Admin.Certificate.Raw, admin.Certificate)

	snap, err := c.Writer.CurrentSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot.TxID, snap.TxID)
	assert.Len(t, snap.Config.Nodes, 3)
}

func TestCommitConfig_VersionsAdvance(t *testing.T) {
	c := testutil.NewCluster(t)
	ctx := context.Background()

	c.AddUser(t, "alice", key.AlgorithmECDSAP256, types.CapabilityReadConfig)

	next, err := c.Writer.CommitConfig(ctx, cloneConfig(c.Snapshot.Config))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), next.Version.BlockNum)
	assert.NotEqual(t, c.Snapshot.TxID, next.TxID)
}

func TestCommitConfig_AdminRotation(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	ctx := context.Background()

	signer, err := key.Generate(key.AlgorithmEd25519)
	require.NoError(t, err)
	cert, err := c.CA.Issue("root-admin", signer.Public())
	require.NoError(t, err)

	cfg := cloneConfig(c.Snapshot.Config)
	cfg.Admins = []*types.Admin{{ID: "root-admin", Certificate: cert.Raw}}
	_, err = c.Writer.CommitConfig(ctx, cfg)
	require.NoError(t, err)

	reader := state.NewReader(c.Codec)
	old, err := reader.User(state.StoreGetter(ctx, c.Store), testutil.AdminID)
	require.NoError(t, err)
	assert.Nil(t, old, "旧管理员记录应被删除")
	fresh, err := reader.User(state.StoreGetter(ctx, c.Store), "root-admin")
	require.NoError(t, err)
	require.NotNil(t, fresh)
}

func TestValidateConfig_Rejects(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1", "bdb-node-2")
	otherCA, err := pki.NewCA("other", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	foreign, err := key.Generate(key.AlgorithmECDSAP256)
	require.NoError(t, err)
	foreignCert, err := otherCA.Issue("bdb-node-9", foreign.Public())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(cfg *types.ClusterConfig)
	}{
		{"无根证书", func(cfg *types.ClusterConfig) { cfg.CertAuthConfig = nil }},
		{"无节点", func(cfg *types.ClusterConfig) { cfg.Nodes = nil }},
		{"无管理员", func(cfg *types.ClusterConfig) { cfg.Admins = nil }},
		{"节点重复", func(cfg *types.ClusterConfig) { cfg.Nodes = append(cfg.Nodes, cfg.Nodes[0]) }},
		{"缺少端口", func(cfg *types.ClusterConfig) {
			n := *cfg.Nodes[0]
			n.Port = 0
			cfg.Nodes[0] = &n
		}},
		{"外部 CA 证书", func(cfg *types.ClusterConfig) {
			cfg.Nodes = append(cfg.Nodes, &types.NodeConfig{ID: "bdb-node-9", Address: "h", Port: 1, Certificate: foreignCert.Raw})
		}},
		{"共识成员不存在", func(cfg *types.ClusterConfig) {
			cfg.ConsensusConfig.Members = append(cfg.ConsensusConfig.Members, &types.ConsensusMember{NodeID: "ghost", RaftID: 9, PeerHost: "h", PeerPort: 1})
		}},
		{"raft_id 重复", func(cfg *types.ClusterConfig) {
			m := *cfg.ConsensusConfig.Members[1]
			m.RaftID = cfg.ConsensusConfig.Members[0].RaftID
			cfg.ConsensusConfig.Members[1] = &m
		}},
		{"节点 ID 含控制字符", func(cfg *types.ClusterConfig) {
			n := *cfg.Nodes[0]
			n.ID = "bad\nid"
			cfg.Nodes[0] = &n
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cloneConfig(c.Snapshot.Config)
			tt.mutate(cfg)
			_, err := c.Writer.CommitConfig(context.Background(), cfg)
			assert.ErrorIs(t, err, writer.ErrInvalidConfig)
		})
	}

	snap, err := c.Writer.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot.Version, snap.Version, "校验失败不应产生新版本")
}

func TestCommitUsers(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	ctx := context.Background()

	alice := c.AddUser(t, "alice", key.AlgorithmECDSAP256, types.CapabilityReadConfig)
	bob := c.AddUser(t, "bob", key.AlgorithmSecp256k1, types.CapabilitySubmitTransaction)
	require.NotNil(t, alice.Certificate)
	require.Nil(t, bob.Certificate)

	reader := state.NewReader(c.Codec)
	rec, err := reader.User(state.StoreGetter(ctx, c.Store), "bob")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(3), rec.Version.BlockNum)

	v, err := c.Writer.CommitUsers(ctx, nil, []string{"bob"})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v.BlockNum)
	rec, err = reader.User(state.StoreGetter(ctx, c.Store), "bob")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCommitUsers_Rejects(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	ctx := context.Background()
	alice := c.AddUser(t, "alice", key.AlgorithmECDSAP256)

	_, err := c.Writer.CommitUsers(ctx, nil, nil)
	assert.ErrorIs(t, err, writer.ErrInvalidUser)

	_, err = c.Writer.CommitUsers(ctx, []*types.UserRecord{{ID: testutil.AdminID, Certificate: alice.Certificate.Raw}}, nil)
	assert.ErrorIs(t, err, writer.ErrAdminRecord)

	_, err = c.Writer.CommitUsers(ctx, nil, []string{testutil.AdminID})
	assert.ErrorIs(t, err, writer.ErrAdminRecord)

	_, err = c.Writer.CommitUsers(ctx, []*types.UserRecord{{ID: "carol", Certificate: alice.Certificate.Raw, Capabilities: []types.Capability{types.CapabilityAdmin}}}, nil)
	assert.ErrorIs(t, err, writer.ErrAdminRecord)

	_, err = c.Writer.CommitUsers(ctx, []*types.UserRecord{{ID: "carol", Capabilities: []types.Capability{"root"}, Certificate: alice.Certificate.Raw}}, nil)
	assert.ErrorIs(t, err, writer.ErrInvalidUser)

	_, err = c.Writer.CommitUsers(ctx, []*types.UserRecord{{ID: "carol"}}, nil)
	assert.ErrorIs(t, err, writer.ErrInvalidUser)

	_, err = c.Writer.CommitUsers(ctx, nil, []string{"ghost"})
	assert.ErrorIs(t, err, writer.ErrUserNotFound)

	_, err = c.Writer.CommitUsers(ctx, []*types.UserRecord{{ID: "alice", Certificate: alice.Certificate.Raw}}, []string{"alice"})
	assert.ErrorIs(t, err, writer.ErrInvalidUser)
}

func TestCommitUsers_NoConfig(t *testing.T) {
	svc := writer.NewService(testutil.NewStore(t), state.NewCodec(false), nil, logimpl.NewNop())
	_, err := svc.CommitUsers(context.Background(), nil, []string{"x"})
	assert.ErrorIs(t, err, writer.ErrNoConfig)
}

func TestCommit_PublishesEvents(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	bus := eventimpl.New(nil)
	svc := writer.NewService(c.Store, c.Codec, bus, logimpl.NewNop())

	var mu sync.Mutex
	var configs []event.ConfigCommitted
	var users []event.UserCommitted
	require.NoError(t, bus.Subscribe(event.EventTypeConfigCommitted, func(e event.ConfigCommitted) {
		mu.Lock()
		defer mu.Unlock()
		configs = append(configs, e)
	}))
	require.NoError(t, bus.Subscribe(event.EventTypeUserCommitted, func(e event.UserCommitted) {
		mu.Lock()
		defer mu.Unlock()
		users = append(users, e)
	}))

	snap, err := svc.CommitConfig(context.Background(), cloneConfig(c.Snapshot.Config))
	require.NoError(t, err)
	signer, err := key.Generate(key.AlgorithmSecp256k1)
	require.NoError(t, err)
	_, err = svc.CommitUsers(context.Background(), []*types.UserRecord{{
		ID:        "dave",
		PublicKey: signer.(key.Secp256k1PrivateKey).PubKey().SerializeCompressed(),
	}}, nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, configs, 1)
	assert.Equal(t, snap.TxID, configs[0].TxID)
	assert.Equal(t, []string{"bdb-node-1"}, configs[0].NodeIDs)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"dave"}, users[0].Written)
}

func TestCommit_ReadOnlyGate(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	ctx := context.Background()
	gate := writegate.New(nil)
	c.Writer.SetWriteGate(gate)

	gate.EnterReadOnly("maintenance")
	_, err := c.Writer.CommitConfig(ctx, cloneConfig(c.Snapshot.Config))
	assert.ErrorIs(t, err, wgif.ErrReadOnly)
	_, err = c.Writer.CommitUsers(ctx, nil, []string{"x"})
	assert.ErrorIs(t, err, wgif.ErrReadOnly)

	snap, err := c.Writer.CurrentSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot.Version, snap.Version)

	gate.ExitReadOnly()
	next, err := c.Writer.CommitConfig(ctx, cloneConfig(c.Snapshot.Config))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Version.BlockNum)
}
