// Package auth 请求认证配置
package auth

import (
	"time"

	"github.com/weisyn/bcdb/pkg/types"
)

// AuthOptions 认证配置选项
type AuthOptions struct {
	LookupTimeout       time.Duration `json:"lookup_timeout"`
	ExposeRejectionKind bool          `json:"expose_rejection_kind"`
}

// Config 认证配置实现
type Config struct {
	options *AuthOptions
}

// New 创建认证配置
func New(user *types.UserAuthConfig) *Config {
	options := &AuthOptions{
		LookupTimeout:       defaultLookupTimeout,
		ExposeRejectionKind: defaultExposeRejectionKind,
	}
	if user != nil {
		if user.LookupTimeout != nil {
			if d, err := time.ParseDuration(*user.LookupTimeout); err == nil && d > 0 {
				options.LookupTimeout = d
			}
		}
		if user.ExposeRejectionKind != nil {
			options.ExposeRejectionKind = *user.ExposeRejectionKind
		}
	}
	return &Config{options: options}
}

// GetOptions 获取认证配置选项
func (c *Config) GetOptions() *AuthOptions {
	return c.options
}
