package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// RegionHandler 区域模块 HTTP 处理器
type RegionHandler struct {
	regionSvc service.RegionService
}

// NewRegionHandler 创建 RegionHandler
func NewRegionHandler(regionSvc service.RegionService) *RegionHandler {
	return &RegionHandler{regionSvc: regionSvc}
}

// ListRegions 区域列表
// GET /api/regions
func (h *RegionHandler) ListRegions(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	regions, err := h.regionSvc.List(c.Request.Context(), p)
	if err != nil {
		h.handleRegionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": regions})
}

// GetRegion 区域详情
// GET /api/regions/:id
func (h *RegionHandler) GetRegion(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "区域ID不能为空")
	if !ok {
		return
	}

	region, err := h.regionSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleRegionError(c, err)
		return
	}

	response.OK(c, region)
}

// CreateRegion 创建区域
// POST /api/regions
func (h *RegionHandler) CreateRegion(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	region, err := h.regionSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleRegionError(c, err)
		return
	}

	response.Created(c, region)
}

// UpdateRegion 更新区域
// PUT /api/regions/:id
func (h *RegionHandler) UpdateRegion(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "区域ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	region, err := h.regionSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleRegionError(c, err)
		return
	}

	response.OK(c, region)
}

// DeleteRegion 删除区域
// DELETE /api/regions/:id
func (h *RegionHandler) DeleteRegion(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "区域ID不能为空")
	if !ok {
		return
	}

	if err := h.regionSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleRegionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleRegionError 统一处理区域模块业务错误
func (h *RegionHandler) handleRegionError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrRegionNotFound):
		response.NotFound(c, 12001, "区域不存在")
	case errors.Is(err, service.ErrRegionHasContracts):
		response.BadRequest(c, 12002, "区域下存在合同，无法删除")
	case errors.Is(err, service.ErrRegionManagerRole):
		response.BadRequest(c, 12003, "区域负责人须为该区域的在职总监")
	default:
		response.InternalError(c)
	}
}
