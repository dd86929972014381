// Package batch 为不支持原生事务的后端提供写缓冲事务
//
// 事务内的写入先记录在内存中，读取优先命中本事务的写入；提交时由后端整体应用。
package batch

import (
	"sort"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// Reader 从后端读取已提交的值，键不存在时返回 nil, nil
type Reader func(key []byte) ([]byte, error)

// Batch 写缓冲事务
type Batch struct {
	read    Reader
	pending map[string][]byte // nil 表示删除
}

var _ storage.Transaction = (*Batch)(nil)

// New 创建写缓冲事务
func New(read Reader) *Batch {
	return &Batch{read: read, pending: make(map[string][]byte)}
}

// Get 读取键值，本事务的写入优先
func (b *Batch) Get(key []byte) ([]byte, error) {
	if val, ok := b.pending[string(key)]; ok {
		if val == nil {
			return nil, nil
		}
		return append([]byte(nil), val...), nil
	}
	return b.read(key)
}

// Set 记录写入
func (b *Batch) Set(key, value []byte) error {
	b.pending[string(key)] = append(make([]byte, 0, len(value)), value...)
	return nil
}

// Delete 记录删除
func (b *Batch) Delete(key []byte) error {
	b.pending[string(key)] = nil
	return nil
}

// Exists 检查键是否存在
func (b *Batch) Exists(key []byte) (bool, error) {
	val, err := b.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Op 单个待提交操作
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Ops 返回按键排序的待提交操作
func (b *Batch) Ops() []Op {
	ops := make([]Op, 0, len(b.pending))
	for k, v := range b.pending {
		ops = append(ops, Op{Key: k, Value: v, Delete: v == nil})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Key < ops[j].Key })
	return ops
}

// Empty 是否没有待提交操作
func (b *Batch) Empty() bool {
	return len(b.pending) == 0
}
