// Package api 对外接口层
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/bcdb/internal/api/http"
)

// Module 返回API模块
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
	)
}
