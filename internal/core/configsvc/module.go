package configsvc

import (
	"go.uber.org/fx"

	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 配置分发模块依赖
type ModuleParams struct {
	fx.In

	Store   storage.Store
	Codec   *state.Codec
	Options *authconfig.AuthOptions
	Logger  log.Logger
}

// Module 返回配置分发模块
func Module() fx.Option {
	return fx.Module("configsvc",
		fx.Provide(func(p ModuleParams) *Distributor {
			return New(p.Store, p.Codec, p.Options.LookupTimeout, p.Logger.With("module", "configsvc"))
		}),
	)
}
