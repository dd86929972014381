// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/bcdb/internal/config/api"
	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	bootstrapconfig "github.com/weisyn/bcdb/internal/config/bootstrap"
	logconfig "github.com/weisyn/bcdb/internal/config/log"
	nodeconfig "github.com/weisyn/bcdb/internal/config/node"
	storageconfig "github.com/weisyn/bcdb/internal/config/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// Provider 配置提供者接口
//
// 每次调用都从用户配置和默认值重新组装选项，调用方不应修改返回值。
type Provider interface {
	// GetNode 获取本节点身份配置
	GetNode() *nodeconfig.NodeOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetAuth 获取请求认证配置
	GetAuth() *authconfig.AuthOptions

	// GetStorage 获取存储配置
	GetStorage() *storageconfig.StorageOptions

	// GetBootstrap 获取创世引导配置
	GetBootstrap() *bootstrapconfig.BootstrapOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEnvironment 获取运行环境：dev | test | prod，未配置或无效时为 prod
	GetEnvironment() string

	// GetAppConfig 获取原始用户配置
	GetAppConfig() *types.AppConfig
}
