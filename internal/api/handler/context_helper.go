package handler

import (
	"github.com/gin-gonic/gin"

	"atlas/internal/authz"
	"atlas/pkg/jwt"
	"atlas/pkg/response"
)

// 中间件写入 gin.Context 的键
const (
	CtxUserID    = "user_id"
	CtxClaims    = "claims"
	CtxPrincipal = "principal"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetPrincipal 提取 Principal 中间件加载的授权主体
func MustGetPrincipal(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(CtxPrincipal)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	if !ok || p.ID() == "" {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Principal{}, false
	}
	return p, true
}

// GetClaims 当前 Access Token 的声明；未认证时返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// bindID 读取路径参数，空值写入 400
func bindID(c *gin.Context, name, message string) (string, bool) {
	id := c.Param(name)
	if id == "" {
		response.BadRequest(c, 10001, message)
		return "", false
	}
	return id, true
}
