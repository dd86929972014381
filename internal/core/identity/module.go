package identity

import (
	"go.uber.org/fx"

	"github.com/weisyn/bcdb/internal/core/persistence/state"
	identityInterface "github.com/weisyn/bcdb/pkg/interfaces/identity"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 身份模块依赖
type ModuleParams struct {
	fx.In

	Store  storage.Store
	Codec  *state.Codec
	Logger log.Logger
}

// ModuleOutput 身份模块输出
type ModuleOutput struct {
	fx.Out

	Registry identityInterface.Registry
}

// Module 返回身份注册表模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(func(p ModuleParams) ModuleOutput {
			return ModuleOutput{Registry: New(p.Store, p.Codec, p.Logger.With("module", "identity"))}
		}),
	)
}
