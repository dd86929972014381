package middleware

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/pkg/types"
)

// 认证请求头
const (
	HeaderUserID    = "UserID"
	HeaderSignature = "Signature"
)

const grantKey = "auth_grant"

// QueryBuilder 由路由参数和 UserID 头构造待验签的查询
//
// 规范字节完全由服务端重建；带查询参数或请求体的请求在验签前拒绝。
type QueryBuilder func(c *gin.Context, userID string) canonical.Query

// SignatureValidation 签名验证中间件
type SignatureValidation struct {
	verifier *auth.Verifier
}

// NewSignatureValidation 创建签名验证中间件
func NewSignatureValidation(verifier *auth.Verifier) *SignatureValidation {
	return &SignatureValidation{verifier: verifier}
}

// Require 返回要求指定能力的认证中间件，capability 为空时只验签
//
// 缺少 UserID 或 Signature 头属于 MalformedRequest；签名不是合法 base64 时
// 按空签名处理，未注册用户仍然得到 UnknownIdentity。
func (m *SignatureValidation) Require(capability types.Capability, build QueryBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			Fail(c, types.Malformedf("缺少 %s 头", HeaderUserID))
			return
		}
		encoded := c.GetHeader(HeaderSignature)
		if encoded == "" {
			Fail(c, types.Malformedf("缺少 %s 头", HeaderSignature))
			return
		}
		if c.Request.URL.RawQuery != "" {
			Fail(c, types.Malformedf("不接受查询参数"))
			return
		}
		if c.Request.ContentLength != 0 {
			Fail(c, types.Malformedf("不接受请求体"))
			return
		}
		sig, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			sig = nil
		}

		grant, err := m.verifier.Authenticate(c.Request.Context(), auth.Request{
			RequestID:  GetRequestID(c),
			Query:      build(c, userID),
			Signature:  sig,
			Capability: capability,
		})
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(grantKey, grant)
		c.Next()
	}
}

// GetGrant 取出认证中间件写入的凭证，未认证时返回 nil
func GetGrant(c *gin.Context) *auth.Grant {
	if v, ok := c.Get(grantKey); ok {
		if g, ok := v.(*auth.Grant); ok {
			return g
		}
	}
	return nil
}
