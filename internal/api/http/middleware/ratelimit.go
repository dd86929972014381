package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/bcdb/internal/api/http/types"
)

// idleEviction 超过该时间未访问的客户端桶会被回收
const idleEviction = 10 * time.Minute

// RateLimit 每 IP 令牌桶限流
//
// 放在签名校验之前，限制对签名验证的暴力尝试。
type RateLimit struct {
	logger   *zap.Logger
	rate     float64
	burst    float64
	now      func() time.Time
	mu       sync.Mutex
	limiters map[string]*rateLimiter
	lastGC   time.Time
}

// rateLimiter 单个客户端的令牌桶
type rateLimiter struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimit 创建限流中间件，perSecond 为每秒补充的令牌数，burst 为桶容量
func NewRateLimit(logger *zap.Logger, perSecond, burst int) *RateLimit {
	if burst < perSecond {
		burst = perSecond
	}
	return &RateLimit{
		logger:   logger,
		rate:     float64(perSecond),
		burst:    float64(burst),
		now:      time.Now,
		limiters: make(map[string]*rateLimiter),
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.ClientIP()
		if m.allow(clientID) {
			c.Next()
			return
		}

		m.logger.Debug("请求被限流", zap.String("client_ip", clientID), zap.String("path", c.Request.URL.Path))
		problem := apitypes.NewProblemDetails(apitypes.CodeRateLimited, http.StatusTooManyRequests,
			fmt.Sprintf("每秒最多 %.0f 个请求", m.rate))
		problem.RetryAfter = time.Second
		problem.Instance = c.Request.URL.Path
		problem.TraceID = GetRequestID(c)
		problem.WriteJSON(c.Writer)
		c.Abort()
	}
}

// allow 消费一个令牌
func (m *RateLimit) allow(clientID string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastGC) > idleEviction {
		for id, l := range m.limiters {
			if now.Sub(l.lastRefill) > idleEviction {
				delete(m.limiters, id)
			}
		}
		m.lastGC = now
	}

	l, ok := m.limiters[clientID]
	if !ok {
		l = &rateLimiter{tokens: m.burst, lastRefill: now}
		m.limiters[clientID] = l
	}

	l.tokens += now.Sub(l.lastRefill).Seconds() * m.rate
	if l.tokens > m.burst {
		l.tokens = m.burst
	}
	l.lastRefill = now

	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}
