package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/client"
	"github.com/weisyn/bcdb/client/core/transport"
	"github.com/weisyn/bcdb/pkg/types"
)

// stubTransport 固定返回值的 transport
type stubTransport struct {
	transport.Client
	cfg  *types.GetConfigResponse
	user *types.GetUserResponse
	err  error
}

func (s *stubTransport) GetClusterConfig(context.Context) (*types.GetConfigResponse, error) {
	return s.cfg, s.err
}

func (s *stubTransport) GetUser(context.Context, string) (*types.GetUserResponse, error) {
	return s.user, s.err
}

func TestClient_UnwrapsResponses(t *testing.T) {
	stub := &stubTransport{
		cfg: &types.GetConfigResponse{
			Config:  &types.ClusterConfig{Nodes: []*types.NodeConfig{{ID: "bdb-node-1"}}},
			Version: types.Version{BlockNum: 4},
		},
		user: &types.GetUserResponse{
			User:    &types.UserView{ID: "alice"},
			Version: types.Version{BlockNum: 2},
		},
	}
	c := client.NewWithTransport(stub)

	cfg, v, err := c.ClusterConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v.BlockNum)
	assert.Equal(t, "bdb-node-1", cfg.Nodes[0].ID)

	u, v, err := c.User(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.ID)
	assert.Equal(t, uint64(2), v.BlockNum)
}

func TestClient_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := client.NewWithTransport(&stubTransport{err: boom})

	_, _, err := c.ClusterConfig(context.Background())
	assert.ErrorIs(t, err, boom)
	_, _, err = c.User(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
}

func TestNew_RequiresIdentity(t *testing.T) {
	_, err := client.New(transport.Endpoint{NodeID: "bdb-node-1"}, transport.Identity{})
	assert.Error(t, err)
}
