package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// ListDepartments 获取部门列表
// GET /api/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.DepartmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	depts, err := h.deptSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": depts})
}

// GetDepartment 获取部门详情
// GET /api/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}

	dept, err := h.deptSvc.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// CreateDepartment 创建部门
// POST /api/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.Created(c, dept)
}

// UpdateDepartment 更新部门
// PUT /api/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// DeleteDepartment 删除部门
// DELETE /api/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListHeads 部门在各区域的负责人
// GET /api/departments/:id/heads
func (h *DepartmentHandler) ListHeads(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}

	heads, err := h.deptSvc.ListHeads(c.Request.Context(), p, id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": heads})
}

// AssignHead 指定部门在某区域的负责人
// PUT /api/departments/:id/heads
func (h *DepartmentHandler) AssignHead(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}
	var req dto.AssignHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	head, err := h.deptSvc.AssignHead(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, head)
}

// RemoveHead 撤销部门负责人
// DELETE /api/departments/:id/heads/:regionId
func (h *DepartmentHandler) RemoveHead(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "部门ID不能为空")
	if !ok {
		return
	}
	regionID, ok := bindID(c, "regionId", "区域ID不能为空")
	if !ok {
		return
	}

	if err := h.deptSvc.RemoveHead(c.Request.Context(), p, id, regionID); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDepartmentError 统一处理部门模块业务错误
func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, service.ErrDepartmentNameExists):
		response.BadRequest(c, 13002, "部门名称已存在")
	case errors.Is(err, service.ErrDepartmentHasMembers):
		response.BadRequest(c, 13003, "部门下存在成员，无法删除")
	case errors.Is(err, service.ErrHeadRankTooLow):
		response.BadRequest(c, 13004, "部门负责人须为经理及以上")
	case errors.Is(err, service.ErrHeadRegionMismatch):
		response.BadRequest(c, 13005, "负责人不属于该区域")
	case errors.Is(err, service.ErrHeadNotFound):
		response.NotFound(c, 13006, "该区域未指定部门负责人")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13007, "指定用户不存在")
	case errors.Is(err, service.ErrRegionNotFound):
		response.NotFound(c, 13008, "区域不存在")
	default:
		response.InternalError(c)
	}
}
