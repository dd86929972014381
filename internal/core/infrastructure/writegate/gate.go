// Package writegate 写门闸实现
package writegate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
)

// gateImpl 使用 RWMutex 保护状态，AssertWriteAllowed 只取读锁
type gateImpl struct {
	mu sync.RWMutex

	readOnly   bool
	reason     string
	readOnlyAt time.Time

	logger log.Logger
}

var _ wgif.WriteGate = (*gateImpl)(nil)

// New 创建写门闸，logger 可以为 nil
func New(logger log.Logger) wgif.WriteGate {
	return &gateImpl{logger: logger}
}

// EnterReadOnly 进入只读模式
func (g *gateImpl) EnterReadOnly(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readOnly {
		return
	}
	g.readOnly = true
	g.reason = reason
	g.readOnlyAt = time.Now()
	if g.logger != nil {
		g.logger.With(zap.String("reason", reason)).Warn("节点进入只读模式")
	}
}

// ExitReadOnly 退出只读模式
func (g *gateImpl) ExitReadOnly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.readOnly {
		return
	}
	if g.logger != nil {
		g.logger.With(
			zap.String("reason", g.reason),
			zap.Duration("duration", time.Since(g.readOnlyAt)),
		).Info("节点退出只读模式")
	}
	g.readOnly = false
	g.reason = ""
	g.readOnlyAt = time.Time{}
}

// IsReadOnly 检查是否处于只读模式
func (g *gateImpl) IsReadOnly() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.readOnly
}

// ReadOnlyReason 返回只读模式的原因
func (g *gateImpl) ReadOnlyReason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reason
}

// AssertWriteAllowed 校验写操作是否允许
func (g *gateImpl) AssertWriteAllowed(_ context.Context, op string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.readOnly {
		return fmt.Errorf("%w: op=%s reason=%s", wgif.ErrReadOnly, op, g.reason)
	}
	return nil
}
