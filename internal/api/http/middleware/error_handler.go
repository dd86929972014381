package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/bcdb/internal/api/http/types"
)

// ErrorHandler 错误处理中间件
//
// handler 通过 Fail 记录错误，这里统一转换为 Problem Details。
// exposeKind 为 false 时认证失败对外合并为 AUTHENTICATION_FAILED。
func ErrorHandler(logger *zap.Logger, exposeKind bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		problem := apitypes.FromError(err, exposeKind)
		problem.Instance = c.Request.URL.Path
		problem.TraceID = GetRequestID(c)

		fields := []zap.Field{
			zap.String("code", problem.Code),
			zap.Int("status", problem.Status),
			zap.String("request_id", problem.TraceID),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		}
		if problem.Status >= 500 {
			logger.Error("HTTP error", fields...)
		} else {
			logger.Debug("HTTP error", fields...)
		}
		problem.WriteJSON(c.Writer)
	}
}

// Fail 记录错误并终止后续 handler
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
