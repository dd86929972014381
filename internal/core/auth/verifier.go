// Package auth 实现请求签名验证与能力授权
//
// 服务端从 URL 和 UserID 头独立重建规范字节，再用注册表中的用户公钥验签。
// 验证不缓存任何结果，也不持有锁；每次请求都完整走一遍查询和验签。
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	authconfig "github.com/weisyn/bcdb/internal/config/auth"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/bcdb/pkg/interfaces/identity"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/types"
)

// defaultLookupTimeout 未配置查询超时时使用
const defaultLookupTimeout = 2 * time.Second

// Request 待认证的请求
type Request struct {
	RequestID string

	// Query 由服务端根据 URL 和 UserID 头构造，不信任客户端给出的任何字节
	Query canonical.Query

	// Signature 已解码的签名；无法解码时为 nil，在身份查询之后按 InvalidSignature 处理
	Signature []byte

	// Capability 目标操作要求的能力，空表示只验证签名
	Capability types.Capability
}

// Verifier 请求验证器
type Verifier struct {
	registry identity.Registry
	timeout  time.Duration
	logger   log.Logger
	metrics  *verifierMetrics
}

// New 创建验证器，reg 为 nil 时指标不注册
func New(registry identity.Registry, options *authconfig.AuthOptions, reg prometheus.Registerer, logger log.Logger) (*Verifier, error) {
	m, err := newVerifierMetrics(reg)
	if err != nil {
		return nil, err
	}
	timeout := defaultLookupTimeout
	if options != nil && options.LookupTimeout > 0 {
		timeout = options.LookupTimeout
	}
	return &Verifier{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		metrics:  m,
	}, nil
}

// Authenticate 规范化请求、验签并检查能力
//
// 规范化失败在任何注册表查询之前返回 MalformedRequest。
func (v *Verifier) Authenticate(ctx context.Context, req Request) (*Grant, error) {
	start := time.Now()
	grant, err := v.authenticate(ctx, req)
	var caller string
	if req.Query != nil {
		caller = req.Query.Caller()
	}
	v.observe(caller, req.RequestID, req.Capability, err, time.Since(start))
	return grant, err
}

func (v *Verifier) authenticate(ctx context.Context, req Request) (*Grant, error) {
	if req.Query == nil {
		return nil, types.Malformedf("缺少请求内容")
	}
	payload, err := req.Query.Canonical()
	if err != nil {
		return nil, err
	}

	id, err := v.verify(ctx, req.Query.Caller(), payload, req.Signature)
	if err != nil {
		return nil, err
	}

	if req.Capability != "" && !id.HasCapability(req.Capability) {
		return nil, &types.Error{Kind: types.KindUnauthorized, Message: "缺少能力 " + string(req.Capability)}
	}
	return &Grant{identity: id, capability: req.Capability, requestID: req.RequestID}, nil
}

// VerifySignature 用注册表中的用户公钥验证规范字节上的签名
func (v *Verifier) VerifySignature(ctx context.Context, userID string, payload, sig []byte) (*types.Identity, error) {
	start := time.Now()
	id, err := v.verify(ctx, userID, payload, sig)
	v.observe(userID, "", "", err, time.Since(start))
	return id, err
}

func (v *Verifier) verify(ctx context.Context, userID string, payload, sig []byte) (*types.Identity, error) {
	if err := canonical.ValidateString(userID); err != nil {
		return nil, types.Malformedf("UserID 无效: %v", err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	id, err := v.registry.Resolve(lookupCtx, userID)
	if err != nil {
		if types.IsKind(err, types.KindNotFound) {
			return nil, &types.Error{Kind: types.KindUnknownIdentity, Message: "用户未注册"}
		}
		return nil, err
	}

	if len(sig) == 0 {
		return nil, &types.Error{Kind: types.KindInvalidSignature, Message: "签名为空或无法解码"}
	}
	if err := signature.Verify(id.PublicKey, payload, sig); err != nil {
		return nil, &types.Error{Kind: types.KindInvalidSignature, Message: "签名校验失败", Err: err}
	}
	return id, nil
}

// observe 审计日志与指标，按错误种类区分
func (v *Verifier) observe(userID, requestID string, capability types.Capability, err error, elapsed time.Duration) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(types.KindOf(err))
		if outcome == "" {
			if errors.Is(err, context.Canceled) {
				outcome = outcomeCanceled
			} else {
				outcome = string(types.KindUnavailable)
			}
		}
	}
	v.metrics.outcomes.WithLabelValues(outcome).Inc()
	v.metrics.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	logger := v.logger.With(
		zap.String("user_id", userID),
		zap.String("request_id", requestID),
		zap.String("capability", string(capability)),
		zap.Duration("elapsed", elapsed),
	)
	if err == nil {
		logger.Info("请求认证通过")
		return
	}

	logger = logger.With(zap.String("error_kind", outcome), zap.Error(err))
	switch outcome {
	case outcomeCanceled:
		logger.Debug("客户端已断开，放弃认证")
	case string(types.KindUnavailable):
		logger.Error("请求认证失败：依赖不可用")
	default:
		logger.Warn("请求认证被拒绝")
	}
}
