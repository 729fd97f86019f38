package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Refresh 刷新 Token，旧 Refresh Token 作废
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// 请求体可选
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c), req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前主体信息
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), p)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, me)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrUserInactive):
		response.Error(c, http.StatusUnauthorized, 11002, "账号已停用")
	case errors.Is(err, service.ErrInvalidToken):
		response.Error(c, http.StatusUnauthorized, 11003, "Token 无效或已过期")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11004, "用户不存在")
	default:
		response.InternalError(c)
	}
}
