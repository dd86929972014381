// Package storage 定义已提交状态的键值存储接口
//
// 身份注册表和配置分发器只读；唯一的写入方是提交路径（单写多读）。
package storage

import "context"

// Store 键值存储
//
// Get 在键不存在时返回 nil, nil。实现必须支持并发读，并保证
// RunInTransaction 的写入对读者整体可见。
type Store interface {
	// Get 获取指定键的值
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// GetMany 批量获取，不存在的键不出现在结果中
	GetMany(ctx context.Context, keys [][]byte) (map[string][]byte, error)

	// PrefixScan 按前缀扫描
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在事务中执行操作，fn 返回错误时回滚
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error

	// Close 关闭存储并释放资源
	Close() error
}

// Transaction 存储事务
type Transaction interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Exists(key []byte) (bool, error)
}
