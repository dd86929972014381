// Package handlers HTTP 端点处理器
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/bcdb/internal/api/http/middleware"
	"github.com/weisyn/bcdb/internal/core/response"
)

// writeSigned 以本节点身份签名响应体并写出
func writeSigned(c *gin.Context, signer *response.Signer, payload interface{}) {
	signed, err := signer.Sign(payload)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, signed)
}
