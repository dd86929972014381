package redis

import (
	"time"

	configtypes "github.com/weisyn/bcdb/pkg/types"
)

// RedisOptions Redis存储配置选项
type RedisOptions struct {
	Addr        string        `json:"addr"`
	Password    string        `json:"-"`
	DB          int           `json:"db"`
	Prefix      string        `json:"prefix"`
	DialTimeout time.Duration `json:"dial_timeout"`
	PoolSize    int           `json:"pool_size"`
}

// Config Redis存储配置实现
type Config struct {
	options *RedisOptions
}

// New 创建Redis存储配置
func New(userConfig *configtypes.UserStorageConfig) *Config {
	options := &RedisOptions{
		Addr:        defaultAddr,
		DB:          defaultDB,
		Prefix:      defaultPrefix,
		DialTimeout: defaultDialTimeout,
		PoolSize:    defaultPoolSize,
	}
	if userConfig != nil {
		if userConfig.RedisAddr != nil {
			options.Addr = *userConfig.RedisAddr
		}
		if userConfig.RedisPassword != nil {
			options.Password = *userConfig.RedisPassword
		}
		if userConfig.RedisDB != nil {
			options.DB = *userConfig.RedisDB
		}
		if userConfig.RedisPrefix != nil {
			options.Prefix = *userConfig.RedisPrefix
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整的Redis存储配置选项
func (c *Config) GetOptions() *RedisOptions {
	return c.options
}

// NewFromOptions 从RedisOptions创建配置实现
func NewFromOptions(options *RedisOptions) *Config {
	return &Config{options: options}
}
