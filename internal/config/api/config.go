package api

import (
	"time"

	"github.com/weisyn/bcdb/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`

	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	CORSEnabled bool     `json:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins"`

	// 限流：每IP令牌桶，RateLimitRequestsPerSecond 为 0 时关闭
	RateLimitRequestsPerSecond int `json:"rate_limit_requests_per_second"`
	RateLimitBurst             int `json:"rate_limit_burst"`
	MaxRequestSize             int `json:"max_request_size"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置，用户配置覆盖默认值
func New(userConfig *types.UserAPIConfig) *Config {
	options := createDefaultAPIOptions()
	if userConfig != nil {
		applyUserAPIConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:                    defaultHTTPEnabled,
			Host:                       defaultHTTPHost,
			Port:                       defaultHTTPPort,
			ReadTimeout:                defaultHTTPReadTimeout,
			WriteTimeout:               defaultHTTPWriteTimeout,
			ShutdownTimeout:            defaultShutdownTimeout,
			CORSEnabled:                defaultCORSEnabled,
			CORSOrigins:                []string{"*"},
			RateLimitRequestsPerSecond: defaultRateLimitRPS,
			RateLimitBurst:             defaultRateLimitBurst,
			MaxRequestSize:             defaultMaxRequestSize,
		},
	}
}

func applyUserAPIConfig(options *APIOptions, user *types.UserAPIConfig) {
	if user.HTTPEnabled != nil {
		options.HTTP.Enabled = *user.HTTPEnabled
	}
	if user.HTTPHost != nil {
		options.HTTP.Host = *user.HTTPHost
	}
	if user.HTTPPort != nil {
		options.HTTP.Port = *user.HTTPPort
	}
	if user.HTTPCorsEnabled != nil {
		options.HTTP.CORSEnabled = *user.HTTPCorsEnabled
	}
	if len(user.HTTPCorsOrigins) > 0 {
		options.HTTP.CORSOrigins = user.HTTPCorsOrigins
	}
	if user.RateLimitRequestsPerSecond != nil {
		options.HTTP.RateLimitRequestsPerSecond = *user.RateLimitRequestsPerSecond
	}
	if user.RateLimitBurst != nil {
		options.HTTP.RateLimitBurst = *user.RateLimitBurst
	}
	if d, ok := parseDuration(user.ReadTimeout); ok {
		options.HTTP.ReadTimeout = d
	}
	if d, ok := parseDuration(user.WriteTimeout); ok {
		options.HTTP.WriteTimeout = d
	}
}

// parseDuration 无法解析的值保留默认
func parseDuration(s *string) (time.Duration, bool) {
	if s == nil {
		return 0, false
	}
	d, err := time.ParseDuration(*s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// GetOptions 获取API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
