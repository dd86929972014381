package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/weisyn/bcdb/internal/api"
	apihttp "github.com/weisyn/bcdb/internal/api/http"
	"github.com/weisyn/bcdb/internal/app/version"
	config "github.com/weisyn/bcdb/internal/config"
	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/configsvc"
	"github.com/weisyn/bcdb/internal/core/identity"
	"github.com/weisyn/bcdb/internal/core/infrastructure/event"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/infrastructure/metrics"
	"github.com/weisyn/bcdb/internal/core/infrastructure/storage"
	"github.com/weisyn/bcdb/internal/core/infrastructure/writegate"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/internal/core/persistence/writer"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/internal/core/usersvc"
	configInterface "github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	// 启动后由 fx.Populate 填充
	logger log.Logger
	writer *writer.Service
	server *apihttp.Server
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 配置、日志、指标和写门闸
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configInterface.AppOptions { return b.opts }),
		config.Module(),
		logimpl.Module(),
		metrics.Module(),
		writegate.Module(),
	}
}

// SetupCommunicationLayer 事件总线和存储
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
		state.Module(),
	}
}

// SetupBusinessLayer 身份、认证、提交与查询服务
//
// writer 在 OnStart 中执行创世引导，必须先于 API 启动。
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		identity.Module(),
		auth.Module(),
		writer.Module(),
		configsvc.Module(),
		usersvc.Module(),
		response.Module(),
	}
}

// SetupApplicationLayer 对外接口
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{
		api.Module(),
		fx.Populate(&b.server),
	}
}

// SetupModules 按依赖顺序组合所有模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	all = append(all, b.opts.extra...)
	return all
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
		fx.Populate(&b.logger, &b.writer),
		fx.Invoke(func(lifecycle fx.Lifecycle, logger log.Logger, provider configInterface.Provider) {
			lifecycle.Append(fx.Hook{
				OnStart: func(context.Context) error {
					logger.With(
						zap.String("version", version.GetVersion()),
						zap.String("node_id", provider.GetNode().ID),
						zap.String("environment", provider.GetEnvironment()),
					).Info("节点已启动")
					return nil
				},
				OnStop: func(context.Context) error {
					logger.Info("节点正在停止")
					return nil
				},
			})
		}),
	)
	return b.fxApp.Err()
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
