package writer

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
)

// ModuleParams 提交模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Store     storage.Store
	Codec     *state.Codec
	EventBus  event.EventBus      `optional:"true"`
	WriteGate writegate.WriteGate `optional:"true"`
	Logger    log.Logger
}

// Module 返回提交模块，启动时执行创世引导
func Module() fx.Option {
	return fx.Module("writer",
		fx.Provide(func(p ModuleParams) *Service {
			logger := p.Logger.With("module", "writer")
			svc := NewService(p.Store, p.Codec, p.EventBus, logger)
			if p.WriteGate != nil {
				svc.SetWriteGate(p.WriteGate)
			}
			p.Lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					_, err := Genesis(ctx, svc, p.Provider.GetNode(), p.Provider.GetBootstrap(), logger)
					return err
				},
			})
			return svc
		}),
	)
}
