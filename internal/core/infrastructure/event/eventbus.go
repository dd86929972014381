// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// EventBus 是对 asaskevich/EventBus 的薄封装
//
// 关闭后 Publish 静默丢弃，订阅返回 ErrClosed。
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger
	closed atomic.Bool

	published atomic.Uint64
}

// New 创建事件总线
func New(logger log.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 实现同步订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if eb.closed.Load() {
		return ErrClosed
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if eb.closed.Load() {
		return ErrClosed
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if eb.closed.Load() {
		return
	}
	eb.published.Add(1)
	if eb.logger != nil {
		eb.logger.With(zap.String("event", string(eventType))).Debug("发布事件")
	}
	eb.bus.Publish(string(eventType), args...)
}

// HasCallback 检查是否有订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// Published 已发布事件总数
func (eb *EventBus) Published() uint64 {
	return eb.published.Load()
}

// Close 停止接收新事件并等待在途异步处理结束
func (eb *EventBus) Close() {
	if eb.closed.Swap(true) {
		return
	}
	eb.bus.WaitAsync()
}

var _ event.EventBus = (*EventBus)(nil)
