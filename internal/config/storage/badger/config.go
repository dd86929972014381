package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/bcdb/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	Path             string `json:"path"`                // 数据库存储路径
	SyncWrites       bool   `json:"sync_writes"`         // 是否同步写入
	MemTableSize     int64  `json:"mem_table_size"`      // 内存表大小
	ValueLogFileSize int64  `json:"value_log_file_size"` // 值日志文件大小
	InMemory         bool   `json:"in_memory"`           // 仅测试使用
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置
//
// 路径规则：配置了 storage.data_root 时使用 {data_root}/badger，否则 ./data/badger。
func New(userConfig *configtypes.UserStorageConfig) *Config {
	options := &BadgerOptions{
		Path:             defaultPath,
		SyncWrites:       defaultSyncWrites,
		MemTableSize:     defaultMemTableSize,
		ValueLogFileSize: defaultValueLogFileSize,
	}
	if userConfig != nil {
		if userConfig.DataRoot != nil && *userConfig.DataRoot != "" {
			options.Path = filepath.Join(*userConfig.DataRoot, "badger")
		}
		if userConfig.SyncWrites != nil {
			options.SyncWrites = *userConfig.SyncWrites
		}
	}
	if abs, err := filepath.Abs(options.Path); err == nil {
		options.Path = abs
	}
	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}
