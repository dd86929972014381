// Package storage 汇总存储后端配置
package storage

import (
	"github.com/weisyn/bcdb/internal/config/storage/badger"
	"github.com/weisyn/bcdb/internal/config/storage/memory"
	"github.com/weisyn/bcdb/internal/config/storage/redis"
	configtypes "github.com/weisyn/bcdb/pkg/types"
)

// 存储后端
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// StorageOptions 存储配置选项
type StorageOptions struct {
	Backend        string                `json:"backend"`
	CompressValues bool                  `json:"compress_values"`
	Badger         *badger.BadgerOptions `json:"badger"`
	Memory         *memory.MemoryOptions `json:"memory"`
	Redis          *redis.RedisOptions   `json:"redis"`
}

// New 创建存储配置，未知后端回退到 badger
func New(userConfig *configtypes.UserStorageConfig) *StorageOptions {
	options := &StorageOptions{
		Backend:        defaultBackend,
		CompressValues: defaultCompressValues,
		Badger:         badger.New(userConfig).GetOptions(),
		Memory:         memory.New(userConfig).GetOptions(),
		Redis:          redis.New(userConfig).GetOptions(),
	}
	if userConfig != nil {
		if userConfig.Backend != nil {
			switch *userConfig.Backend {
			case BackendBadger, BackendMemory, BackendRedis:
				options.Backend = *userConfig.Backend
			}
		}
		if userConfig.CompressValues != nil {
			options.CompressValues = *userConfig.CompressValues
		}
	}
	return options
}
