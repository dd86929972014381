package memory

import (
	"time"

	configtypes "github.com/weisyn/bcdb/pkg/types"
)

// MemoryOptions 内存存储配置选项
type MemoryOptions struct {
	Shards             int           `json:"shards"`
	MaxMemoryMB        int           `json:"max_memory_mb"`
	LifeWindow         time.Duration `json:"life_window"`
	MaxEntriesInWindow int           `json:"max_entries_in_window"`
	MaxEntrySize       int           `json:"max_entry_size"`
}

// Config 内存存储配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存存储配置
func New(userConfig *configtypes.UserStorageConfig) *Config {
	options := &MemoryOptions{
		Shards:             defaultShards,
		MaxMemoryMB:        defaultMaxMemoryMB,
		LifeWindow:         defaultLifeWindow,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		MaxEntrySize:       defaultMaxEntrySize,
	}
	if userConfig != nil {
		if userConfig.MemoryShards != nil && isPowerOfTwo(*userConfig.MemoryShards) {
			options.Shards = *userConfig.MemoryShards
		}
		if userConfig.MemoryMaxMB != nil && *userConfig.MemoryMaxMB > 0 {
			options.MaxMemoryMB = *userConfig.MemoryMaxMB
		}
	}
	return &Config{options: options}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// GetOptions 获取完整的内存存储配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// NewFromOptions 从MemoryOptions创建配置实现
func NewFromOptions(options *MemoryOptions) *Config {
	return &Config{options: options}
}
