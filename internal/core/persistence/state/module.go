package state

import (
	"go.uber.org/fx"

	"github.com/weisyn/bcdb/pkg/interfaces/config"
)

// Module 按存储配置提供记录编解码器
func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(func(provider config.Provider) *Codec {
			return NewCodec(provider.GetStorage().CompressValues)
		}),
	)
}
