// Package types 定义请求认证层的错误类型
package types

import (
	"errors"
	"fmt"
)

// ErrorKind 错误种类
//
// 日志与指标按种类区分；对外消息可以合并（见 API 层的错误映射）。
type ErrorKind string

const (
	// KindMalformedRequest 请求字段缺失、多余或无法规范化，在任何注册表查询之前拒绝
	KindMalformedRequest ErrorKind = "MalformedRequest"
	// KindUnknownIdentity 用户不存在
	KindUnknownIdentity ErrorKind = "UnknownIdentity"
	// KindInvalidSignature 签名校验失败
	KindInvalidSignature ErrorKind = "InvalidSignature"
	// KindUnauthorized 签名有效但能力不足
	KindUnauthorized ErrorKind = "Unauthorized"
	// KindNotFound 请求的节点或资源不存在
	KindNotFound ErrorKind = "NotFound"
	// KindUnavailable 注册表/存储查询超时或依赖不可用，可退避重试
	KindUnavailable ErrorKind = "Unavailable"
)

// Retryable 该种类的错误是否可以安全重试
func (k ErrorKind) Retryable() bool {
	return k == KindUnavailable
}

// Error 携带种类的错误
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error { return e.Err }

// Is 同种类的 *Error 视为相等，便于 errors.Is(err, ErrUnknownIdentity)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// 哨兵错误，只用于 errors.Is 比较
var (
	ErrMalformedRequest = &Error{Kind: KindMalformedRequest}
	ErrUnknownIdentity  = &Error{Kind: KindUnknownIdentity}
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
)

// NewError 创建指定种类的错误
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Malformedf 创建 MalformedRequest 错误
func Malformedf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformedRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf 创建 NotFound 错误
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailable 创建 Unavailable 错误
func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf 提取错误种类；不携带种类的错误返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误链中是否包含指定种类
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
