// Package storage 提供存储管理功能
package storage

import (
	"context"
	"fmt"

	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Logger    log.Logger
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	Store storageInterface.Store
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置创建存储并在应用停止时关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := params.Logger.With("module", "storage")
	options := params.Provider.GetStorage()

	store, err := NewStore(context.Background(), options, logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("创建存储失败(backend=%s): %w", options.Backend, err)
	}
	logger.Infof("存储已就绪: backend=%s", options.Backend)

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			if err := store.Close(); err != nil {
				logger.Errorf("关闭存储失败: %v", err)
				return err
			}
			return nil
		},
	})

	return ModuleOutput{Store: store}, nil
}
