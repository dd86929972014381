// Package metrics 提供节点级 Prometheus 注册表
//
// 各模块通过注入的 prometheus.Registerer 注册自己的指标，
// /metrics 端点通过 prometheus.Gatherer 导出，不使用全局默认注册表。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Namespace 所有指标的命名空间
const Namespace = "bcdb"

// ModuleOutput metrics 模块输出
type ModuleOutput struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Module 返回 metrics 模块的 fx.Option
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideRegistry),
	)
}

// NewRegistry 创建带运行时采集器的注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: Namespace}),
	)
	return reg
}

// ProvideRegistry 同一个注册表同时作为 Registerer 和 Gatherer 提供
func ProvideRegistry() ModuleOutput {
	reg := NewRegistry()
	return ModuleOutput{Registerer: reg, Gatherer: reg}
}

// RegisterOrExisting 注册收集器；已存在同名收集器时返回已注册的实例
func RegisterOrExisting[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
