// Package config 提供应用配置管理功能
package config

import (
	"fmt"

	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	nodeconfig "github.com/weisyn/bcdb/internal/config/node"
	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *nodeconfig.NodeOptions {
				return provider.GetNode()
			},
			func(provider config.Provider) *authconfig.AuthOptions {
				return provider.GetAuth()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务，配置项无效或节点身份配置不完整时启动失败
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	if err := ValidateAppConfig(appConfig); err != nil {
		return ConfigOutput{}, err
	}

	provider := NewProvider(appConfig)
	if err := provider.GetNode().Validate(); err != nil {
		return ConfigOutput{}, fmt.Errorf("节点配置无效: %w", err)
	}

	return ConfigOutput{Provider: provider}, nil
}
