// Package event 定义已提交状态变更的事件总线接口
package event

import "github.com/weisyn/bcdb/pkg/types"

// EventType 事件类型
type EventType string

const (
	// EventTypeConfigCommitted 新的集群配置快照已提交
	EventTypeConfigCommitted EventType = "config.committed"
	// EventTypeUserCommitted 用户记录已提交（新增、更新或删除）
	EventTypeUserCommitted EventType = "user.committed"
)

// ConfigCommitted config.committed 事件载荷
type ConfigCommitted struct {
	TxID    string
	Version types.Version
	NodeIDs []string
	Admins  []string
}

// UserCommitted user.committed 事件载荷
type UserCommitted struct {
	TxID    string
	Version types.Version
	Written []string
	Deleted []string
}

// EventBus 事件总线接口
//
// 处理函数的参数须与 Publish 的参数一一对应，由底层总线反射调用。
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅，transactional 为 true 时同一订阅者串行处理
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// HasCallback 是否存在订阅者
	HasCallback(eventType EventType) bool
	// WaitAsync 等待异步处理完成
	WaitAsync()
}
