package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/batch"
	"github.com/weisyn/bcdb/pkg/types"
)

func TestCodec_RoundTrip(t *testing.T) {
	rec := &types.UserRecord{
		ID:           "admin",
		Certificate:  []byte{1, 2, 3},
		Capabilities: []types.Capability{types.CapabilityAdmin},
		Version:      types.Version{BlockNum: 3, TxNum: 0},
	}
	for _, compress := range []bool{false, true} {
		codec := NewCodec(compress)
		data, err := codec.Encode(rec)
		require.NoError(t, err)

		var got types.UserRecord
		require.NoError(t, codec.Decode(data, &got))
		assert.Equal(t, *rec, got)
	}
}

// TestCodec_MixedFormats 切换压缩配置后旧记录仍可读
func TestCodec_MixedFormats(t *testing.T) {
	plain, err := NewCodec(false).Encode(types.Version{BlockNum: 7})
	require.NoError(t, err)

	var v types.Version
	require.NoError(t, NewCodec(true).Decode(plain, &v))
	assert.Equal(t, uint64(7), v.BlockNum)
}

func TestCodec_Corrupt(t *testing.T) {
	codec := NewCodec(true)
	var v types.Version
	assert.ErrorIs(t, codec.Decode(nil, &v), ErrCorruptRecord)
	assert.ErrorIs(t, codec.Decode([]byte{0x7f, '{', '}'}, &v), ErrCorruptRecord)
	assert.ErrorIs(t, codec.Decode([]byte{formatSnappy, 0xff, 0xff}, &v), ErrCorruptRecord)
	assert.ErrorIs(t, codec.Decode([]byte{formatJSON, '{'}, &v), ErrCorruptRecord)
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, []byte("_users/alice"), UserKey("alice"))
	id, ok := UserIDFromKey("_users/alice")
	assert.True(t, ok)
	assert.Equal(t, "alice", id)
	_, ok = UserIDFromKey("_users/")
	assert.False(t, ok)
	_, ok = UserIDFromKey("_config/cluster")
	assert.False(t, ok)
}

func TestReader(t *testing.T) {
	codec := NewCodec(true)
	reader := NewReader(codec)

	empty := batch.New(func([]byte) ([]byte, error) { return nil, nil })
	snap, err := reader.Snapshot(TxGetter(empty))
	require.NoError(t, err)
	assert.Nil(t, snap)
	rec, err := reader.User(TxGetter(empty), "ghost")
	require.NoError(t, err)
	assert.Nil(t, rec)
	v, err := reader.LastVersion(TxGetter(empty))
	require.NoError(t, err)
	assert.Equal(t, types.Version{}, v)

	tx := batch.New(func([]byte) ([]byte, error) { return nil, nil })
	data, err := codec.Encode(&types.ConfigSnapshot{
		Config:  &types.ClusterConfig{Nodes: []*types.NodeConfig{{ID: "bdb-node-1"}}},
		Version: types.Version{BlockNum: 1},
		TxID:    "tx-1",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte(ClusterConfigKey), data))

	snap, err = reader.Snapshot(TxGetter(tx))
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "bdb-node-1", snap.Config.Nodes[0].ID)

	missingConfig, err := codec.Encode(&types.ConfigSnapshot{TxID: "x"})
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte(ClusterConfigKey), missingConfig))
	_, err = reader.Snapshot(TxGetter(tx))
	assert.ErrorIs(t, err, ErrCorruptRecord)

}

func TestAwait(t *testing.T) {
	v, err := Await(context.Background(), func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	_, err = Await(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
