// Package types HTTP 层的响应与错误类型
package types

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/weisyn/bcdb/pkg/types"
)

// ProblemDetails RFC 7807 问题详情，附加机器可读的错误码
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Code      string `json:"code"`
	TraceID   string `json:"traceId,omitempty"`
	Timestamp string `json:"timestamp"`

	// RetryAfter 仅用于设置 Retry-After 头，不序列化
	RetryAfter time.Duration `json:"-"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Code + ": " + p.Detail
	}
	return p.Code
}

// WriteJSON 写入 application/problem+json 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	if p.RetryAfter > 0 {
		w.Header().Set("Retry-After", formatSeconds(p.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// 错误码
const (
	CodeMalformedRequest     = "MALFORMED_REQUEST"
	CodeUnknownIdentity      = "UNKNOWN_IDENTITY"
	CodeInvalidSignature     = "INVALID_SIGNATURE"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeUnavailable          = "UNAVAILABLE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
)

// DefaultRetryAfter Unavailable 响应建议的退避时间
const DefaultRetryAfter = time.Second

// NewProblemDetails 创建问题详情
func NewProblemDetails(code string, status int, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:      "urn:bcdb:problem:" + code,
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// FromError 把领域错误映射为问题详情
//
// exposeKind 为 false 时 UnknownIdentity 与 InvalidSignature 合并为
// AUTHENTICATION_FAILED，对外不区分用户是否存在。
func FromError(err error, exposeKind bool) *ProblemDetails {
	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}

	var e *types.Error
	message := "内部错误"
	if errors.As(err, &e) {
		message = e.Message
	}

	switch types.KindOf(err) {
	case types.KindMalformedRequest:
		return NewProblemDetails(CodeMalformedRequest, http.StatusBadRequest, message)
	case types.KindUnknownIdentity:
		if !exposeKind {
			return NewProblemDetails(CodeAuthenticationFailed, http.StatusUnauthorized, "请求认证失败")
		}
		return NewProblemDetails(CodeUnknownIdentity, http.StatusUnauthorized, message)
	case types.KindInvalidSignature:
		if !exposeKind {
			return NewProblemDetails(CodeAuthenticationFailed, http.StatusUnauthorized, "请求认证失败")
		}
		return NewProblemDetails(CodeInvalidSignature, http.StatusUnauthorized, message)
	case types.KindUnauthorized:
		return NewProblemDetails(CodeUnauthorized, http.StatusForbidden, message)
	case types.KindNotFound:
		return NewProblemDetails(CodeNotFound, http.StatusNotFound, message)
	case types.KindUnavailable:
		pd = NewProblemDetails(CodeUnavailable, http.StatusServiceUnavailable, message)
		pd.RetryAfter = DefaultRetryAfter
		return pd
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		pd = NewProblemDetails(CodeUnavailable, http.StatusServiceUnavailable, "请求已取消或超时")
		pd.RetryAfter = DefaultRetryAfter
		return pd
	}
	return NewProblemDetails(CodeInternal, http.StatusInternalServerError, "内部错误")
}

func formatSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
