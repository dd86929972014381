package memory

import "time"

// 内存存储默认配置值
const (
	// defaultShards bigcache 分片数，必须是2的幂
	defaultShards = 64

	// defaultMaxMemoryMB 最大内存使用量
	defaultMaxMemoryMB = 256

	// defaultLifeWindow 已提交记录不过期，bigcache 需要一个窗口值，取足够长
	defaultLifeWindow = 100 * 365 * 24 * time.Hour

	// defaultMaxEntriesInWindow 预分配的条目数
	defaultMaxEntriesInWindow = 10000

	// defaultMaxEntrySize 单条记录的预估大小(字节)
	defaultMaxEntrySize = 2048
)
