package http

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// Module 返回HTTP API模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(NewServer),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, s *Server, cfg config.Provider, logger log.Logger) {
	if !cfg.GetAPI().HTTP.Enabled {
		logger.Warn("HTTP API 已在配置中关闭")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  s.Stop,
	})
}
