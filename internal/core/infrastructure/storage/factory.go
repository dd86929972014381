// Package storage 提供存储服务工厂实现
package storage

import (
	"context"
	"fmt"

	storageconfig "github.com/weisyn/bcdb/internal/config/storage"
	badgerconfig "github.com/weisyn/bcdb/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/bcdb/internal/config/storage/memory"
	redisconfig "github.com/weisyn/bcdb/internal/config/storage/redis"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage/redis"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// NewStore 按配置的后端创建存储
func NewStore(ctx context.Context, options *storageconfig.StorageOptions, logger log.Logger) (storageInterface.Store, error) {
	switch options.Backend {
	case storageconfig.BackendBadger:
		store, err := badger.New(badgerconfig.NewFromOptions(options.Badger), logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case storageconfig.BackendMemory:
		if logger != nil {
			logger.Warn("使用内存存储，进程退出后已提交状态会丢失")
		}
		store, err := memory.New(memoryconfig.NewFromOptions(options.Memory), logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case storageconfig.BackendRedis:
		store, err := redis.New(ctx, redisconfig.NewFromOptions(options.Redis), logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("不支持的存储后端: %s", options.Backend)
}
