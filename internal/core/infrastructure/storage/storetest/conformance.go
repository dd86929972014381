// Package storetest 提供 storage.Store 实现的通用一致性测试
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// Factory 为每个子测试创建一个空的存储实例
type Factory func(t *testing.T) storage.Store

// Run 对存储实现执行一致性测试
func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("SetGetDelete", func(t *testing.T) { testSetGetDelete(t, newStore(t)) })
	t.Run("GetMany", func(t *testing.T) { testGetMany(t, newStore(t)) })
	t.Run("PrefixScan", func(t *testing.T) { testPrefixScan(t, newStore(t)) })
	t.Run("TransactionCommit", func(t *testing.T) { testTransactionCommit(t, newStore(t)) })
	t.Run("TransactionRollback", func(t *testing.T) { testTransactionRollback(t, newStore(t)) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceledContext(t, newStore(t)) })
	t.Run("ConcurrentReaders", func(t *testing.T) { testConcurrentReaders(t, newStore(t)) })
}

func testGetMissing(t *testing.T, s storage.Store) {
	ctx := context.Background()
	val, err := s.Get(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, val)

	exists, err := s.Exists(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func testSetGetDelete(t *testing.T, s storage.Store) {
	ctx := context.Background()
	key := []byte("_users/alice")

	require.NoError(t, s.Set(ctx, key, []byte("v1")))
	val, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, s.Set(ctx, key, []byte("v2")))
	val, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), val)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, key))
	val, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val)

	assert.NoError(t, s.Ping(ctx))
}

func testGetMany(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, s.Set(ctx, []byte("b"), []byte("2")))

	got, err := s.GetMany(ctx, [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, got)
}

func testPrefixScan(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Set(ctx, []byte(fmt.Sprintf("_users/u%d", i)), []byte{byte(i)}))
	}
	require.NoError(t, s.Set(ctx, []byte("_config/cluster"), []byte("c")))

	got, err := s.PrefixScan(ctx, []byte("_users/"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []byte{1}, got["_users/u1"])
	_, leaked := got["_config/cluster"]
	assert.False(t, leaked)
}

func testTransactionCommit(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, []byte("old"), []byte("x")))

	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.Set([]byte("k1"), []byte("v1")); err != nil {
			return err
		}
		// 事务内可以读到自己的写入
		val, err := tx.Get([]byte("k1"))
		if err != nil {
			return err
		}
		if string(val) != "v1" {
			return fmt.Errorf("read-your-writes failed: %q", val)
		}
		exists, err := tx.Exists([]byte("old"))
		if err != nil || !exists {
			return fmt.Errorf("expected old key: %v", err)
		}
		return tx.Delete([]byte("old"))
	})
	require.NoError(t, err)

	val, err := s.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	val, err = s.Get(ctx, []byte("old"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func testTransactionRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.Set([]byte("k1"), []byte("v1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	val, err := s.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func testCanceledContext(t *testing.T, s storage.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, []byte("k"))
	assert.ErrorIs(t, err, context.Canceled)

	err = s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.Set([]byte("k"), []byte("v"))
	})
	assert.ErrorIs(t, err, context.Canceled)

	val, err := s.Get(context.Background(), []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func testConcurrentReaders(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, []byte("shared"), []byte("v0")))

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				val, err := s.Get(ctx, []byte("shared"))
				if err != nil {
					errs <- err
					return
				}
				if len(val) == 0 {
					errs <- fmt.Errorf("empty read")
					return
				}
			}
		}()
	}
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Set(ctx, []byte("shared"), []byte(fmt.Sprintf("v%d", i))))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
