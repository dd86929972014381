package response

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	nodeconfig "github.com/weisyn/bcdb/internal/config/node"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// ModuleParams 响应签名模块依赖
type ModuleParams struct {
	fx.In

	Node   *nodeconfig.NodeOptions
	Logger log.Logger
}

// Module 返回响应签名模块
func Module() fx.Option {
	return fx.Module("response",
		fx.Provide(func(p ModuleParams) (*Signer, error) {
			s, err := Load(p.Node.ID, p.Node.CertificatePath, p.Node.KeyPath)
			if err != nil {
				return nil, err
			}
			p.Logger.With(
				zap.String("module", "response"),
				zap.String("node_id", s.NodeID()),
				zap.String("subject", s.Certificate().Subject.CommonName),
			).Info("响应签名密钥已加载")
			return s, nil
		}),
	)
}
