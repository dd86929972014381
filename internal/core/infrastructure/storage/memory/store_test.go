package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryconfig "github.com/weisyn/bcdb/internal/config/storage/memory"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/storetest"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(memoryconfig.New(&types.UserStorageConfig{
		MemoryShards: types.IntPtr(8),
		MemoryMaxMB:  types.IntPtr(16),
	}), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestClosedStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.Get(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Set(context.Background(), []byte("k"), []byte("v")), ErrClosed)
}

func TestInvalidShardsFallBack(t *testing.T) {
	cfg := memoryconfig.New(&types.UserStorageConfig{MemoryShards: types.IntPtr(6)})
	assert.Equal(t, 64, cfg.GetOptions().Shards)
}
