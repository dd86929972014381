package auth

import "github.com/weisyn/bcdb/pkg/types"

// Grant 一次成功认证的凭证
//
// 只能由 Verifier 创建；零值不授予任何能力。
type Grant struct {
	identity   *types.Identity
	capability types.Capability
	requestID  string
}

// UserID 已认证的用户
func (g *Grant) UserID() string {
	if g == nil || g.identity == nil {
		return ""
	}
	return g.identity.UserID
}

// Identity 已认证的身份
func (g *Grant) Identity() *types.Identity {
	if g == nil {
		return nil
	}
	return g.identity
}

// Capability 认证时校验过的能力，空表示只校验了签名
func (g *Grant) Capability() types.Capability {
	if g == nil {
		return ""
	}
	return g.capability
}

// RequestID 认证时的请求 ID
func (g *Grant) RequestID() string {
	if g == nil {
		return ""
	}
	return g.requestID
}

// Allows 身份是否具备能力
func (g *Grant) Allows(c types.Capability) bool {
	return g != nil && g.identity != nil && g.identity.HasCapability(c)
}

// Require 身份不具备能力时返回 Unauthorized
func Require(g *Grant, c types.Capability) error {
	if !g.Allows(c) {
		return &types.Error{Kind: types.KindUnauthorized, Message: "缺少能力 " + string(c)}
	}
	return nil
}
