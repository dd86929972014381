package usersvc

import (
	"go.uber.org/fx"

	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 用户查询模块依赖
type ModuleParams struct {
	fx.In

	Store   storage.Store
	Codec   *state.Codec
	Options *authconfig.AuthOptions
	Logger  log.Logger
}

// Module 返回用户查询模块
func Module() fx.Option {
	return fx.Module("usersvc",
		fx.Provide(func(p ModuleParams) *Service {
			return New(p.Store, p.Codec, p.Options.LookupTimeout, p.Logger.With("module", "usersvc"))
		}),
	)
}
