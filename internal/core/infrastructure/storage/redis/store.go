// Package redis 提供基于 Redis 的共享存储实现
//
// 多个节点进程可以共享同一个 Redis 实例，按键前缀隔离集群。
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	redisconfig "github.com/weisyn/bcdb/internal/config/storage/redis"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/batch"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// scanCount 每次 SCAN 的建议数量
const scanCount = 256

// Store 基于 go-redis 的 storage.Store 实现
//
// go-redis 客户端本身并发安全；事务写入通过 MULTI/EXEC 整体应用。
// 跨进程的写入顺序由外部提交路径保证。
type Store struct {
	client *redis.Client
	prefix string
	logger log.Logger
}

var _ storage.Store = (*Store)(nil)

// New 创建 Redis 存储并检查连接
func New(ctx context.Context, config *redisconfig.Config, logger log.Logger) (*Store, error) {
	options := config.GetOptions()
	if options.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        options.Addr,
		Password:    options.Password,
		DB:          options.DB,
		DialTimeout: options.DialTimeout,
		PoolSize:    options.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败 %s: %w", options.Addr, err)
	}

	if logger != nil {
		logger.Infof("Redis存储已连接: addr=%s db=%d prefix=%s", options.Addr, options.DB, options.Prefix)
	}
	return &Store{client: client, prefix: options.Prefix, logger: logger}, nil
}

func (s *Store) key(k []byte) string {
	return s.prefix + string(k)
}

// Get 获取值，键不存在时返回 nil, nil
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis获取键失败: %w", err)
	}
	return val, nil
}

// Set 设置键值对，不过期
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Delete 删除指定键
func (s *Store) Delete(ctx context.Context, key []byte) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis检查键存在性失败: %w", err)
	}
	return n > 0, nil
}

// GetMany 使用 MGET 批量获取
func (s *Store) GetMany(ctx context.Context, keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	vals, err := s.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis批量获取失败: %w", err)
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			result[string(keys[i])] = []byte(str)
		}
	}
	return result, nil
}

// PrefixScan 使用 SCAN MATCH 扫描前缀
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	pattern := escapeGlob(s.key(prefix)) + "*"

	var keys [][]byte
	iter := s.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, []byte(strings.TrimPrefix(iter.Val(), s.prefix)))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis前缀扫描失败: %w", err)
	}
	return s.GetMany(ctx, keys)
}

// RunInTransaction 缓冲写入，提交时通过 MULTI/EXEC 整体应用
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := batch.New(func(key []byte) ([]byte, error) {
		return s.Get(ctx, key)
	})
	if err := fn(tx); err != nil {
		return err
	}
	if tx.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range tx.Ops() {
			if op.Delete {
				pipe.Del(ctx, s.prefix+op.Key)
			} else {
				pipe.Set(ctx, s.prefix+op.Key, op.Value, 0)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis提交事务失败: %w", err)
	}
	return nil
}

// Ping 检查连接
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭连接池
func (s *Store) Close() error {
	return s.client.Close()
}

// escapeGlob 转义 Redis MATCH 模式中的特殊字符
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
