package api

import "time"

// API服务默认配置值
const (
	// defaultHTTPEnabled 默认启用HTTP API
	defaultHTTPEnabled = true

	// defaultHTTPHost 监听所有网络接口
	defaultHTTPHost = "0.0.0.0"

	// defaultHTTPPort 与集群内节点的默认公布端口一致
	defaultHTTPPort = 6001

	// defaultHTTPReadTimeout 防止慢客户端占用连接
	defaultHTTPReadTimeout = 15 * time.Second

	// defaultHTTPWriteTimeout 防止慢客户端影响响应写入
	defaultHTTPWriteTimeout = 15 * time.Second

	// defaultShutdownTimeout 优雅关闭等待时间
	defaultShutdownTimeout = 5 * time.Second

	// defaultCORSEnabled 查询接口只服务于 SDK/CLI，默认关闭CORS
	defaultCORSEnabled = false

	// defaultRateLimitRPS 每IP每秒请求数
	// InvalidSignature 需要在上游限流以减缓暴力尝试
	defaultRateLimitRPS = 20

	// defaultRateLimitBurst 令牌桶容量
	defaultRateLimitBurst = 40

	// defaultMaxRequestSize 查询请求没有请求体，1MB足够
	defaultMaxRequestSize = 1 << 20
)
