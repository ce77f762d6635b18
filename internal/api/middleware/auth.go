package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/brandpilot/internal/service"
	"github.com/d60-Lab/brandpilot/pkg/response"
)

const (
	CtxUserID  = "user_id"
	CtxIsAdmin = "is_admin"
)

// JWTAuth 解析 Bearer token，注入 user_id / is_admin
func JWTAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		userID, isAdmin, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(CtxUserID, userID)
		c.Set(CtxIsAdmin, isAdmin)
		c.Next()
	}
}

// AdminOnly 仅管理员
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdmin) {
			response.Unauthorized(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
