package configsvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/configsvc"
	"github.com/weisyn/bcdb/internal/core/identity"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/persistence/testutil"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

func grantFor(t *testing.T, c *testutil.Cluster, m *testutil.Member) *auth.Grant {
	t.Helper()
	v, err := auth.New(identity.New(c.Store, c.Codec, logimpl.NewNop()), nil, nil, logimpl.NewNop())
	require.NoError(t, err)
	q := canonical.GetConfigQuery{UserID: m.ID}
	g, err := v.Authenticate(context.Background(), auth.Request{Query: q, Signature: c.Sign(t, m, q)})
	require.NoError(t, err)
	return g
}

func TestGetNodeConfig(t *testing.T) {
	c := testutil.NewCluster(t)
	d := configsvc.New(c.Store, c.Codec, time.Second, logimpl.NewNop())
	g := grantFor(t, c, c.Admin)

	n, version, err := d.GetNodeConfig(context.Background(), g, "bdb-node-1")
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot.Version, version)
	assert.Equal(t, "bdb-node-1", n.ID)
	assert.Equal(t, "10.0.0.1", n.Address)
	assert.Equal(t, uint32(6001), n.Port)
	assert.Equal(t, c.Node("bdb-node-1").Certificate.Raw, n.Certificate)
}

// TestGetNodeConfig_NoLeak 返回值不含其他节点的任何字段
func TestGetNodeConfig_NoLeak(t *testing.T) {
	c := testutil.NewCluster(t)
	d := configsvc.New(c.Store, c.Codec, time.Second, logimpl.NewNop())
	g := grantFor(t, c, c.Admin)

	for _, target := range c.Snapshot.Config.Nodes {
		n, _, err := d.GetNodeConfig(context.Background(), g, target.ID)
		require.NoError(t, err)
		for _, other := range c.Snapshot.Config.Nodes {
			if other.ID == target.ID {
				continue
			}
			assert.NotEqual(t, other.ID, n.ID)
			assert.NotEqual(t, other.Address, n.Address)
			assert.NotEqual(t, other.Port, n.Port)
			assert.NotEqual(t, other.Certificate, n.Certificate)
		}
	}
}

func TestGetNodeConfig_NotFound(t *testing.T) {
	c := testutil.NewCluster(t)
	d := configsvc.New(c.Store, c.Codec, time.Second, logimpl.NewNop())

	_, _, err := d.GetNodeConfig(context.Background(), grantFor(t, c, c.Admin), "bdb-node-9")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCapabilityRequired(t *testing.T) {
	c := testutil.NewCluster(t)
	reader := c.AddUser(t, "reader", key.AlgorithmEd25519, types.CapabilityReadConfig)
	writerOnly := c.AddUser(t, "writer", key.AlgorithmECDSAP256, types.CapabilitySubmitTransaction)
	d := configsvc.New(c.Store, c.Codec, time.Second, logimpl.NewNop())

	snap, err := d.GetClusterConfig(context.Background(), grantFor(t, c, reader))
	require.NoError(t, err)
	assert.Len(t, snap.Config.Nodes, 3)

	_, err = d.GetClusterConfig(context.Background(), grantFor(t, c, writerOnly))
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	_, _, err = d.GetNodeConfig(context.Background(), grantFor(t, c, writerOnly), "bdb-node-1")
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = d.GetClusterConfig(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

// TestGetClusterConfig_FollowsCommits 读取总是看到最新提交的版本
func TestGetClusterConfig_FollowsCommits(t *testing.T) {
	c := testutil.NewCluster(t)
	d := configsvc.New(c.Store, c.Codec, time.Second, logimpl.NewNop())
	g := grantFor(t, c, c.Admin)

	cfg := *c.Snapshot.Config
	cfg.Nodes = cfg.Nodes[:2]
	cfg.ConsensusConfig = &types.ConsensusConfig{
		Algorithm: "raft",
		Members:   cfg.ConsensusConfig.Members[:2],
	}
	next, err := c.Writer.CommitConfig(context.Background(), &cfg)
	require.NoError(t, err)

	snap, err := d.GetClusterConfig(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, next.Version, snap.Version)
	assert.True(t, c.Snapshot.Version.Less(snap.Version))
	assert.Len(t, snap.Config.Nodes, 2)

	_, _, err = d.GetNodeConfig(context.Background(), g, "bdb-node-3")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

type stalledStore struct {
	storage.Store
	release chan struct{}
}

func (s *stalledStore) Get(ctx context.Context, k []byte) ([]byte, error) {
	<-s.release
	return s.Store.Get(ctx, k)
}

func TestSnapshotTimeout(t *testing.T) {
	c := testutil.NewCluster(t)
	g := grantFor(t, c, c.Admin)
	stalled := &stalledStore{Store: c.Store, release: make(chan struct{})}
	defer close(stalled.release)
	d := configsvc.New(stalled, c.Codec, 20*time.Millisecond, logimpl.NewNop())

	_, err := d.GetClusterConfig(context.Background(), g)
	assert.ErrorIs(t, err, types.ErrUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.GetClusterConfig(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
}
