package redis

import "time"

// Redis存储默认配置值
const (
	defaultAddr = "127.0.0.1:6379"

	defaultDB = 0

	// defaultPrefix 多个集群共用一个Redis时按前缀隔离
	defaultPrefix = "bcdb:"

	defaultDialTimeout = 2 * time.Second

	defaultPoolSize = 32
)
