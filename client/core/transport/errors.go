package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/weisyn/bcdb/pkg/types"
)

// ErrResponseVerification 响应签名或应答节点校验失败
var ErrResponseVerification = errors.New("节点响应校验失败")

// APIError 节点返回的问题详情
type APIError struct {
	Status     int
	Code       string
	Detail     string
	TraceID    string
	RetryAfter time.Duration
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("http %d %s: %s (trace %s)", e.Status, e.Code, e.Detail, e.TraceID)
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Detail)
}

// Kind 对应的错误种类；合并后的 AUTHENTICATION_FAILED 无法区分，返回空串
func (e *APIError) Kind() types.ErrorKind {
	switch e.Code {
	case "MALFORMED_REQUEST":
		return types.KindMalformedRequest
	case "UNKNOWN_IDENTITY":
		return types.KindUnknownIdentity
	case "INVALID_SIGNATURE":
		return types.KindInvalidSignature
	case "UNAUTHORIZED":
		return types.KindUnauthorized
	case "NOT_FOUND":
		return types.KindNotFound
	case "UNAVAILABLE":
		return types.KindUnavailable
	}
	return ""
}

// Is 支持 errors.Is(err, types.ErrInvalidSignature) 这类判断
func (e *APIError) Is(target error) bool {
	var t *types.Error
	if !errors.As(target, &t) || t.Message != "" {
		return false
	}
	return e.Kind() != "" && e.Kind() == t.Kind
}

// AuthenticationFailed 认证被拒绝（含合并后的错误码）
func (e *APIError) AuthenticationFailed() bool {
	switch e.Code {
	case "AUTHENTICATION_FAILED", "UNKNOWN_IDENTITY", "INVALID_SIGNATURE":
		return true
	}
	return false
}

// Retryable 节点暂时不可用或限流，可以退避重试
func (e *APIError) Retryable() bool {
	return e.Code == "UNAVAILABLE" || e.Code == "RATE_LIMITED"
}
