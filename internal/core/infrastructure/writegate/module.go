package writegate

import (
	"go.uber.org/fx"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
)

// ModuleInput 定义 WriteGate 模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 定义 WriteGate 模块的输出服务
type ModuleOutput struct {
	fx.Out

	WriteGate wgif.WriteGate
}

// Module 返回 WriteGate 模块的 fx.Option
func Module() fx.Option {
	return fx.Module("writegate",
		fx.Provide(ProvideWriteGate),
	)
}

// ProvideWriteGate 每个应用实例一个写门闸
func ProvideWriteGate(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "writegate")
	}
	return ModuleOutput{WriteGate: New(logger)}
}
