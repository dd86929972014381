// Package writegate 写门闸接口
//
// 只读模式下节点继续提供查询，但拒绝所有提交。
package writegate

import (
	"context"
	"errors"
)

// ErrReadOnly 节点处于只读模式
var ErrReadOnly = errors.New("节点处于只读模式")

// WriteGate 写门闸
type WriteGate interface {
	// EnterReadOnly 进入只读模式；重复调用时保留最早的原因
	EnterReadOnly(reason string)

	// ExitReadOnly 退出只读模式
	ExitReadOnly()

	// IsReadOnly 检查当前是否处于只读模式
	IsReadOnly() bool

	// ReadOnlyReason 只读原因，不在只读模式时为空
	ReadOnlyReason() string

	// AssertWriteAllowed 只读模式下返回包装了 ErrReadOnly 的错误
	AssertWriteAllowed(ctx context.Context, op string) error
}
