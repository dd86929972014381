package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	"github.com/weisyn/bcdb/pkg/interfaces/identity"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// ModuleParams 认证模块依赖
type ModuleParams struct {
	fx.In

	Registry   identity.Registry
	Options    *authconfig.AuthOptions
	Registerer prometheus.Registerer `optional:"true"`
	Logger     log.Logger
}

// Module 返回认证模块
func Module() fx.Option {
	return fx.Module("auth",
		fx.Provide(func(p ModuleParams) (*Verifier, error) {
			return New(p.Registry, p.Options, p.Registerer, p.Logger.With("module", "auth"))
		}),
	)
}
