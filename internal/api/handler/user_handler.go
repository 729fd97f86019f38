package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表（按区域过滤）
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "用户ID不能为空")
	if !ok {
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// CreateUser 创建用户
// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// UpdateUser 更新用户（角色、区域、部门）
// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "用户ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// SetActive 启用/停用用户
// PUT /api/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "用户ID不能为空")
	if !ok {
		return
	}
	var req dto.SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.userSvc.SetActive(c.Request.Context(), p, id, *req.Active); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrEmailExists):
		response.BadRequest(c, 20002, "邮箱已被使用")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 20003, "角色无效")
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.BadRequest(c, 20004, "不能修改自己的角色或区域")
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.BadRequest(c, 20005, "不能停用自己的账号")
	case errors.Is(err, service.ErrRegionNotFound):
		response.BadRequest(c, 20006, "区域不存在")
	case errors.Is(err, service.ErrDepartmentInvalid):
		response.BadRequest(c, 20007, "部门不存在或已停用")
	default:
		response.InternalError(c)
	}
}
