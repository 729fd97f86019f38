package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"atlas/internal/api/handler"
	"atlas/internal/authz"
	"atlas/internal/service"
	"atlas/pkg/jwt"
	"atlas/pkg/response"
)

// RevocationChecker Token 黑名单查询
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// PrincipalLoader 按用户 ID 重建授权主体
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(jwtMgr *jwt.Manager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
			response.Unauthorized(c, 10002, "Token 已失效")
			c.Abort()
			return
		}

		c.Set(handler.CtxUserID, claims.UserID)
		c.Set(handler.CtxClaims, claims)

		c.Next()
	}
}

// Principal 授权主体加载中间件，必须位于 JWTAuth 之后
// 角色、区域、部门每次请求从数据库读取，修改即时生效
func Principal(loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(handler.CtxUserID)
		if userID == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		p, err := loader.LoadPrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.Unauthorized(c, 10002, "用户不存在")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}
		if !p.IsActive() {
			response.Unauthorized(c, 10002, "账号已停用")
			c.Abort()
			return
		}

		c.Set(handler.CtxPrincipal, p)
		c.Next()
	}
}
