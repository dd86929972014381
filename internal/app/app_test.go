package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/client/core/transport"
	"github.com/weisyn/bcdb/internal/app"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/pkg/types"
)

func u32(v uint32) *uint32 { return &v }

// startNode 生成证书材料并以内存存储启动单节点
func startNode(t *testing.T) (app.App, pki.Layout) {
	t.Helper()
	l := pki.Layout{Root: t.TempDir()}
	ca, err := l.WriteCA(key.AlgorithmECDSAP256)
	require.NoError(t, err)
	_, err = l.WriteNode(ca, "bdb-node-1", key.AlgorithmECDSAP256, "localhost")
	require.NoError(t, err)
	_, err = l.WriteUser(ca, "admin", key.AlgorithmEd25519)
	require.NoError(t, err)

	a, err := app.Start(app.WithAppConfig(&types.AppConfig{
		Environment: types.StringPtr("test"),
		Node: &types.UserNodeConfig{
			ID:              types.StringPtr("bdb-node-1"),
			Address:         types.StringPtr("127.0.0.1"),
			Port:            u32(6001),
			CertificatePath: types.StringPtr(l.NodeCert("bdb-node-1")),
			KeyPath:         types.StringPtr(l.NodeKey("bdb-node-1")),
		},
		API: &types.UserAPIConfig{
			HTTPHost: types.StringPtr("127.0.0.1"),
			HTTPPort: types.IntPtr(0),
		},
		Storage: &types.UserStorageConfig{Backend: types.StringPtr("memory")},
		Bootstrap: &types.UserBootstrapConfig{
			AdminID:              types.StringPtr("admin"),
			AdminCertificatePath: types.StringPtr(l.UserCert("admin")),
			RootCACertPaths:      []string{l.CACert()},
		},
		Log: &types.UserLogConfig{Level: types.StringPtr("error")},
	}))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Stop(ctx)
	})
	return a, l
}

func TestStart_ServesGenesisConfig(t *testing.T) {
	a, l := startNode(t)
	require.NotEmpty(t, a.Addr())

	identity, err := transport.LoadIdentity("admin", l.UserKey("admin"), nil)
	require.NoError(t, err)
	endpoint, err := transport.LoadEndpoint("bdb-node-1", "http://"+a.Addr(), l.NodeCert("bdb-node-1"))
	require.NoError(t, err)
	client, err := transport.NewRESTClient(endpoint, identity, 5*time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	nc, err := client.GetNodeConfig(ctx, "bdb-node-1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", nc.Address)
	assert.Equal(t, uint32(6001), nc.Port)

	cfg, err := client.GetClusterConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.Version.BlockNum)
	require.Len(t, cfg.Config.Admins, 1)
	assert.Equal(t, "admin", cfg.Config.Admins[0].ID)
}

func TestStart_UserCommitVisibleThroughAPI(t *testing.T) {
	a, l := startNode(t)
	ctx := context.Background()

	signer, err := key.Generate(key.AlgorithmSecp256k1)
	require.NoError(t, err)
	pub, ok := signer.Public().(*btcec.PublicKey)
	require.True(t, ok)

	_, err = a.Writer().CommitUsers(ctx, []*types.UserRecord{{
		ID:           "carol",
		PublicKey:    pub.SerializeCompressed(),
		Capabilities: []types.Capability{types.CapabilityReadConfig},
	}}, nil)
	require.NoError(t, err)

	endpoint, err := transport.LoadEndpoint("bdb-node-1", "http://"+a.Addr(), l.NodeCert("bdb-node-1"))
	require.NoError(t, err)
	client, err := transport.NewRESTClient(endpoint, transport.Identity{UserID: "carol", Signer: signer}, 5*time.Second)
	require.NoError(t, err)

	user, err := client.GetUser(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.User.ID)
	assert.Len(t, user.User.PublicKey, 33)

	_, err = client.GetClusterConfig(ctx)
	assert.NoError(t, err)
}

func TestStart_InvalidNodeConfig(t *testing.T) {
	_, err := app.Start(app.WithAppConfig(&types.AppConfig{
		Node:    &types.UserNodeConfig{ID: types.StringPtr("")},
		Storage: &types.UserStorageConfig{Backend: types.StringPtr("memory")},
	}))
	assert.Error(t, err)
}
