// Package app 装配并运行 bcdb 节点
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	internalconfig "github.com/weisyn/bcdb/internal/config"
	"github.com/weisyn/bcdb/internal/core/persistence/writer"
	"github.com/weisyn/bcdb/pkg/types"
)

// ConfigPathEnv 未显式给出配置时读取的环境变量
const ConfigPathEnv = "BCDB_CONFIG_PATH"

const (
	startTimeout = 60 * time.Second
	stopTimeout  = 30 * time.Second
)

// App 运行中的节点
type App interface {
	// Stop 停止应用
	Stop(ctx context.Context) error

	// Wait 阻塞到收到退出信号，然后停止应用
	Wait() error

	// Addr HTTP 实际监听地址，API 禁用时为空
	Addr() string

	// Writer 提交服务，供嵌入方和管理工具写入用户
	Writer() *writer.Service
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop(ctx context.Context) error {
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	sig := <-signals
	a.bootstrap.logger.With(zap.String("signal", sig.String())).Info("收到退出信号，正在停止节点")

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.Stop(ctx)
}

// Addr HTTP 监听地址
func (a *internalApp) Addr() string {
	if a.bootstrap.server == nil {
		return ""
	}
	return a.bootstrap.server.Addr()
}

// Writer 提交服务
func (a *internalApp) Writer() *writer.Service {
	return a.bootstrap.writer
}

// Start 加载配置、装配模块并启动节点
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)
	if err := opts.load(); err != nil {
		return nil, err
	}

	bootstrap := NewBootstrap(opts)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}

// load 按优先级解析配置：WithAppConfig > 嵌入配置 > 配置文件 > 环境变量指定的文件
func (o *options) load() error {
	if o.appConfig == nil {
		var (
			cfg *types.AppConfig
			err error
		)
		switch {
		case len(o.embeddedConfig) > 0:
			cfg, err = internalconfig.ParseAppConfig(o.embeddedConfig)
		case o.configFilePath != "":
			cfg, err = internalconfig.LoadAppConfig(o.configFilePath)
		case os.Getenv(ConfigPathEnv) != "":
			cfg, err = internalconfig.LoadAppConfig(os.Getenv(ConfigPathEnv))
		default:
			cfg = &types.AppConfig{}
		}
		if err != nil {
			return err
		}
		o.appConfig = cfg
	}
	if o.nodeOverride != nil {
		o.appConfig.Node = mergeNode(o.appConfig.Node, o.nodeOverride)
	}
	return nil
}

func mergeNode(base, override *types.UserNodeConfig) *types.UserNodeConfig {
	merged := &types.UserNodeConfig{}
	if base != nil {
		*merged = *base
	}
	if override.ID != nil {
		merged.ID = override.ID
	}
	if override.Address != nil {
		merged.Address = override.Address
	}
	if override.Port != nil {
		merged.Port = override.Port
	}
	if override.CertificatePath != nil {
		merged.CertificatePath = override.CertificatePath
	}
	if override.KeyPath != nil {
		merged.KeyPath = override.KeyPath
	}
	return merged
}
