package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/weisyn/bcdb/internal/api/http/middleware"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/internal/core/usersvc"
	"github.com/weisyn/bcdb/pkg/types"
)

// UserHandlers 用户记录查询
type UserHandlers struct {
	users  *usersvc.Service
	signer *response.Signer
}

// NewUserHandlers 创建用户查询处理器
func NewUserHandlers(users *usersvc.Service, signer *response.Signer) *UserHandlers {
	return &UserHandlers{users: users, signer: signer}
}

// RegisterRoutes 注册路由
//
//	GET /user/:userId   签名内容 {"user_id":"<caller>","target_user_id":"<target>"}
func (h *UserHandlers) RegisterRoutes(r gin.IRouter, sig *middleware.SignatureValidation) {
	r.GET("/user/:userId", sig.Require("", UserQuery), h.GetUser)
}

// UserQuery GET /user/:userId 的规范查询
func UserQuery(c *gin.Context, userID string) canonical.Query {
	return canonical.GetUserQuery{UserID: userID, TargetUserID: c.Param("userId")}
}

// GetUser GET /user/:userId
func (h *UserHandlers) GetUser(c *gin.Context) {
	view, version, err := h.users.GetUser(c.Request.Context(), middleware.GetGrant(c), c.Param("userId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	writeSigned(c, h.signer, &types.GetUserResponse{
		Header:  h.signer.Header(),
		User:    view,
		Version: version,
	})
}
