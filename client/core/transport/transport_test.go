package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/client/core/transport"
	apihttp "github.com/weisyn/bcdb/internal/api/http"
	internalconfig "github.com/weisyn/bcdb/internal/config"
	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/configsvc"
	"github.com/weisyn/bcdb/internal/core/identity"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/persistence/testutil"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/internal/core/usersvc"
	"github.com/weisyn/bcdb/pkg/types"
)

// startNode 以指定节点身份启动一个真实的 HTTP 服务
func startNode(t *testing.T, c *testutil.Cluster, nodeID string, expose bool) *httptest.Server {
	t.Helper()
	provider := internalconfig.NewProvider(&types.AppConfig{
		Environment: types.StringPtr("test"),
		Auth:        &types.UserAuthConfig{ExposeRejectionKind: types.BoolPtr(expose)},
	})
	logger := logimpl.NewNop()
	node := c.Node(nodeID)
	signer, err := response.NewSigner(nodeID, node.Signer, node.Certificate)
	require.NoError(t, err)
	verifier, err := auth.New(identity.New(c.Store, c.Codec, logger), provider.GetAuth(), nil, logger)
	require.NoError(t, err)

	srv, err := apihttp.NewServer(apihttp.Deps{
		Config:      provider,
		Logger:      logger,
		Verifier:    verifier,
		Distributor: configsvc.New(c.Store, c.Codec, time.Second, logger),
		Users:       usersvc.New(c.Store, c.Codec, time.Second, logger),
		Signer:      signer,
		Store:       c.Store,
		Codec:       c.Codec,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func endpoint(c *testutil.Cluster, nodeID, url string) transport.Endpoint {
	return transport.Endpoint{NodeID: nodeID, URL: url, Certificate: c.Node(nodeID).Certificate}
}

func TestRESTClient_Queries(t *testing.T) {
	c := testutil.NewCluster(t)
	alice := c.AddUser(t, "alice", key.AlgorithmSecp256k1, types.CapabilityReadConfig)
	ts := startNode(t, c, "bdb-node-1", true)
	ctx := context.Background()

	admin, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: testutil.AdminID, Signer: c.Admin.Signer}, 0)
	require.NoError(t, err)

	nc, err := admin.GetNodeConfig(ctx, "bdb-node-2")
	require.NoError(t, err)
	assert.Equal(t, "bdb-node-2", nc.ID)
	assert.Equal(t, "10.0.0.2", nc.Address)

	cfg, err := admin.GetClusterConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot.Version, cfg.Version)
	assert.Equal(t, "bdb-node-1", cfg.Header.NodeID)

	user, err := admin.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []types.Capability{types.CapabilityReadConfig}, user.User.Capabilities)

	require.NoError(t, admin.Ping(ctx))

	client, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: "alice", Signer: alice.Signer}, 0)
	require.NoError(t, err)
	_, err = client.GetUser(ctx, testutil.AdminID)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = client.GetNodeConfig(ctx, "bdb-node-7")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRESTClient_RejectionKinds(t *testing.T) {
	c := testutil.NewCluster(t)
	ts := startNode(t, c, "bdb-node-1", true)
	ctx := context.Background()

	ghost, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: "ghost", Signer: c.Admin.Signer}, 0)
	require.NoError(t, err)
	_, err = ghost.GetClusterConfig(ctx)
	assert.ErrorIs(t, err, types.ErrUnknownIdentity)

	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, apiErr.AuthenticationFailed())
	assert.NotEmpty(t, apiErr.TraceID)

	// 用其他用户的私钥冒充 admin
	other := c.AddUser(t, "mallory", key.AlgorithmECDSAP256, types.CapabilityReadConfig)
	impostor, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: testutil.AdminID, Signer: other.Signer}, 0)
	require.NoError(t, err)
	_, err = impostor.GetClusterConfig(ctx)
	assert.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestRESTClient_CoarsenedRejection(t *testing.T) {
	c := testutil.NewCluster(t)
	ts := startNode(t, c, "bdb-node-1", false)

	ghost, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: "ghost", Signer: c.Admin.Signer}, 0)
	require.NoError(t, err)
	_, err = ghost.GetClusterConfig(context.Background())

	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "AUTHENTICATION_FAILED", apiErr.Code)
	assert.True(t, apiErr.AuthenticationFailed())
	assert.NotErrorIs(t, err, types.ErrUnknownIdentity)
}

// TestRESTClient_WrongNodeCertificate 应答节点与期望节点不一致时拒绝响应
func TestRESTClient_WrongNodeCertificate(t *testing.T) {
	c := testutil.NewCluster(t)
	ts := startNode(t, c, "bdb-node-2", true)

	client, err := transport.NewRESTClient(endpoint(c, "bdb-node-1", ts.URL),
		transport.Identity{UserID: testutil.AdminID, Signer: c.Admin.Signer}, 0)
	require.NoError(t, err)

	_, err = client.GetClusterConfig(context.Background())
	assert.ErrorIs(t, err, transport.ErrResponseVerification)
}

func TestFallbackClient_FailsOver(t *testing.T) {
	c := testutil.NewCluster(t)
	good := startNode(t, c, "bdb-node-2", true)

	var hits atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":503,"code":"UNAVAILABLE","detail":"注册表查询超时"}`))
	}))
	t.Cleanup(down.Close)

	fc, err := transport.NewFallbackClient(transport.ClientConfig{
		Endpoints: []transport.Endpoint{
			{NodeID: "bdb-node-1", URL: down.URL, Certificate: c.Node("bdb-node-1").Certificate, Priority: 0},
			{NodeID: "bdb-node-2", URL: good.URL, Certificate: c.Node("bdb-node-2").Certificate, Priority: 1},
		},
		Identity:     transport.Identity{UserID: testutil.AdminID, Signer: c.Admin.Signer},
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	defer fc.Close()

	nc, err := fc.GetNodeConfig(context.Background(), "bdb-node-3")
	require.NoError(t, err)
	assert.Equal(t, "bdb-node-3", nc.ID)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "bdb-node-2", fc.NodeID())
}

// TestFallbackClient_NoFailoverOnAuth 认证失败不切换节点
func TestFallbackClient_NoFailoverOnAuth(t *testing.T) {
	c := testutil.NewCluster(t)
	n1 := startNode(t, c, "bdb-node-1", true)
	n2 := startNode(t, c, "bdb-node-2", true)

	fc, err := transport.NewFallbackClient(transport.ClientConfig{
		Endpoints: []transport.Endpoint{
			endpoint(c, "bdb-node-1", n1.URL),
			endpoint(c, "bdb-node-2", n2.URL),
		},
		Identity:     transport.Identity{UserID: "ghost", Signer: c.Admin.Signer},
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	defer fc.Close()

	_, err = fc.GetClusterConfig(context.Background())
	assert.ErrorIs(t, err, types.ErrUnknownIdentity)
	assert.Equal(t, "bdb-node-1", fc.NodeID())
}

// TestFallbackClient_CallerCancel 调用方超时不把节点标记为不健康
func TestFallbackClient_CallerCancel(t *testing.T) {
	c := testutil.NewCluster(t)
	good := startNode(t, c, "bdb-node-2", true)

	var hits atomic.Int32
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	t.Cleanup(slow.Close)

	fc, err := transport.NewFallbackClient(transport.ClientConfig{
		Endpoints: []transport.Endpoint{
			{NodeID: "bdb-node-1", URL: slow.URL, Certificate: c.Node("bdb-node-1").Certificate, Priority: 0},
			{NodeID: "bdb-node-2", URL: good.URL, Certificate: c.Node("bdb-node-2").Certificate, Priority: 1},
		},
		Identity:     transport.Identity{UserID: testutil.AdminID, Signer: c.Admin.Signer},
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	defer fc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = fc.GetClusterConfig(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "bdb-node-1", fc.NodeID())
}

func TestNewRESTClient_Validation(t *testing.T) {
	_, err := transport.NewRESTClient(transport.Endpoint{URL: "http://x"}, transport.Identity{}, 0)
	assert.Error(t, err)
}
