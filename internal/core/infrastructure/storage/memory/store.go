// Package memory 提供基于BigCache的内存存储实现，用于开发集群和测试
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/weisyn/bcdb/internal/config/storage/memory"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/batch"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// ErrClosed 存储已关闭
var ErrClosed = errors.New("memory store is closed")

// Store 基于 BigCache 的 storage.Store 实现
//
// BigCache 单键操作是并发安全的；mutex 保证事务写入对读者整体可见，
// keySet 用于前缀扫描。
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	closed bool
	keySet map[string]struct{}
}

var _ storage.Store = (*Store)(nil)

// New 创建一个新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger log.Logger) (*Store, error) {
	options := config.GetOptions()

	cacheConfig := bigcache.DefaultConfig(options.LifeWindow)
	cacheConfig.Shards = options.Shards
	cacheConfig.MaxEntriesInWindow = options.MaxEntriesInWindow
	cacheConfig.MaxEntrySize = options.MaxEntrySize
	cacheConfig.HardMaxCacheSize = options.MaxMemoryMB
	cacheConfig.CleanWindow = 0 // 已提交记录不过期
	cacheConfig.Verbose = false
	cacheConfig.OnRemoveWithReason = func(key string, _ []byte, reason bigcache.RemoveReason) {
		if reason != bigcache.Deleted && logger != nil {
			// 空间不足导致的淘汰会丢失已提交状态
			logger.Errorf("内存存储淘汰了键 %s (reason=%d)，请调大 storage.memory_max_mb", key, reason)
		}
	}

	cache, err := bigcache.New(context.Background(), cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		cache:  cache,
		logger: logger,
		keySet: make(map[string]struct{}),
	}, nil
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.cache.Close()
}

// getLocked 调用方需持有锁
func (s *Store) getLocked(key string) ([]byte, error) {
	value, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取缓存键[%s]失败: %w", key, err)
	}
	return value, nil
}

func (s *Store) checkRead(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Get 获取值，键不存在时返回 nil, nil
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.checkRead(ctx); err != nil {
		return nil, err
	}
	return s.getLocked(string(key))
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.Set(key, value)
	})
}

// Delete 删除指定键
func (s *Store) Delete(ctx context.Context, key []byte) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.Delete(key)
	})
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	val, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// GetMany 批量获取
func (s *Store) GetMany(ctx context.Context, keys [][]byte) (map[string][]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.checkRead(ctx); err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		val, err := s.getLocked(string(key))
		if err != nil {
			return nil, err
		}
		if val != nil {
			result[string(key)] = val
		}
	}
	return result, nil
}

// PrefixScan 按前缀扫描
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.checkRead(ctx); err != nil {
		return nil, err
	}

	p := string(prefix)
	result := make(map[string][]byte)
	for key := range s.keySet {
		if !strings.HasPrefix(key, p) {
			continue
		}
		val, err := s.getLocked(key)
		if err != nil {
			return nil, err
		}
		if val != nil {
			result[key] = val
		}
	}
	return result, nil
}

// RunInTransaction 缓冲写入，提交时在写锁内整体应用
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := batch.New(func(key []byte) ([]byte, error) {
		return s.getLocked(string(key))
	})
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, op := range tx.Ops() {
		if op.Delete {
			if err := s.cache.Delete(op.Key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
				return fmt.Errorf("删除缓存键[%s]失败: %w", op.Key, err)
			}
			delete(s.keySet, op.Key)
			continue
		}
		if err := s.cache.Set(op.Key, op.Value); err != nil {
			return fmt.Errorf("设置缓存键[%s]失败: %w", op.Key, err)
		}
		s.keySet[op.Key] = struct{}{}
	}
	return nil
}

// Ping 检查存储是否可用
func (s *Store) Ping(ctx context.Context) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.checkRead(ctx)
}
