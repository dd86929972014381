package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisconfig "github.com/weisyn/bcdb/internal/config/storage/redis"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/storetest"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// 需要真实的 Redis，设置 BCDB_TEST_REDIS_ADDR 后运行
func testAddr(t *testing.T) string {
	addr := os.Getenv("BCDB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BCDB_TEST_REDIS_ADDR 未设置，跳过 Redis 存储测试")
	}
	return addr
}

func newTestStore(t *testing.T, addr string) *Store {
	t.Helper()
	prefix := fmt.Sprintf("bcdb-test:%d:", time.Now().UnixNano())
	store, err := New(context.Background(), redisconfig.New(&types.UserStorageConfig{
		RedisAddr:   &addr,
		RedisPrefix: &prefix,
	}), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := store.client.Keys(ctx, escapeGlob(prefix)+"*").Result()
		if len(keys) > 0 {
			store.client.Del(ctx, keys...)
		}
		_ = store.Close()
	})
	return store
}

func TestConformance(t *testing.T) {
	addr := testAddr(t)
	storetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t, addr)
	})
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `bcdb:\*_users/\?`, escapeGlob("bcdb:*_users/?"))
	assert.Equal(t, `a\[b\]`, escapeGlob("a[b]"))
}

func TestUnreachable(t *testing.T) {
	addr := "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, redisconfig.New(&types.UserStorageConfig{RedisAddr: &addr}), nil)
	assert.Error(t, err)
}
