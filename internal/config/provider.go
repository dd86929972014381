package config

import (
	"github.com/weisyn/bcdb/internal/config/api"
	"github.com/weisyn/bcdb/internal/config/auth"
	"github.com/weisyn/bcdb/internal/config/bootstrap"
	"github.com/weisyn/bcdb/internal/config/log"
	"github.com/weisyn/bcdb/internal/config/node"
	"github.com/weisyn/bcdb/internal/config/storage"
	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// GetNode 获取本节点身份配置
func (p *Provider) GetNode() *node.NodeOptions {
	return node.New(p.appConfig.Node).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetAuth 获取请求认证配置
func (p *Provider) GetAuth() *auth.AuthOptions {
	return auth.New(p.appConfig.Auth).GetOptions()
}

// GetStorage 获取存储配置
//
// storage.data_root 未配置时回退到顶层 data_dir。
func (p *Provider) GetStorage() *storage.StorageOptions {
	userStorage := p.appConfig.Storage
	if p.appConfig.DataDir != nil && (userStorage == nil || userStorage.DataRoot == nil) {
		merged := types.UserStorageConfig{}
		if userStorage != nil {
			merged = *userStorage
		}
		merged.DataRoot = p.appConfig.DataDir
		userStorage = &merged
	}
	return storage.New(userStorage)
}

// GetBootstrap 获取创世引导配置
func (p *Provider) GetBootstrap() *bootstrap.BootstrapOptions {
	return bootstrap.New(p.appConfig.Bootstrap).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetEnvironment 获取运行环境，未配置或无效值时为 prod（安全优先）
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment != nil {
		switch env := *p.appConfig.Environment; env {
		case "dev", "test", "prod":
			return env
		}
	}
	return "prod"
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
