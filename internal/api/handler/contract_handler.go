package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// ContractHandler 合同模块 HTTP 处理器
type ContractHandler struct {
	contractSvc service.ContractService
}

// NewContractHandler 创建 ContractHandler
func NewContractHandler(contractSvc service.ContractService) *ContractHandler {
	return &ContractHandler{contractSvc: contractSvc}
}

// ListContracts 合同列表
// GET /api/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.ContractListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	contracts, total, err := h.contractSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OKPage(c, contracts, total, req.GetPage(), req.GetPageSize())
}

// GetContract 合同详情
// GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "合同ID不能为空")
	if !ok {
		return
	}

	contract, err := h.contractSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OK(c, contract)
}

// CreateContract 创建合同
// POST /api/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	contract, err := h.contractSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.Created(c, contract)
}

// UpdateContract 更新合同（乐观锁）
// PUT /api/contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "合同ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	contract, err := h.contractSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OK(c, contract)
}

// DeleteContract 删除合同
// DELETE /api/contracts/:id
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "合同ID不能为空")
	if !ok {
		return
	}

	if err := h.contractSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleContractError 统一处理合同模块业务错误
func (h *ContractHandler) handleContractError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		response.NotFound(c, 14001, "合同不存在")
	case errors.Is(err, service.ErrContractHasSubdivisions):
		response.BadRequest(c, 14002, "合同下存在子项，无法删除")
	case errors.Is(err, service.ErrRegionNotFound):
		response.BadRequest(c, 14003, "区域不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.BadRequest(c, 14004, "合同经理不存在")
	case errors.Is(err, service.ErrContractManagerInvalid):
		response.BadRequest(c, 14005, "合同经理必须是该区域的在职经理及以上角色")
	default:
		response.InternalError(c)
	}
}

// ────────── 子项 ──────────

// SubdivisionHandler 合同子项 HTTP 处理器
type SubdivisionHandler struct {
	subSvc service.SubdivisionService
}

// NewSubdivisionHandler 创建 SubdivisionHandler
func NewSubdivisionHandler(subSvc service.SubdivisionService) *SubdivisionHandler {
	return &SubdivisionHandler{subSvc: subSvc}
}

// ListSubdivisions 合同下的子项
// GET /api/contracts/:id/subdivisions
func (h *SubdivisionHandler) ListSubdivisions(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	contractID, ok := bindID(c, "id", "合同ID不能为空")
	if !ok {
		return
	}

	subs, err := h.subSvc.ListByContract(c.Request.Context(), p, contractID)
	if err != nil {
		h.handleSubdivisionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subs})
}

// CreateSubdivision 创建子项
// POST /api/contracts/:id/subdivisions
func (h *SubdivisionHandler) CreateSubdivision(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	contractID, ok := bindID(c, "id", "合同ID不能为空")
	if !ok {
		return
	}
	var req dto.CreateSubdivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sub, err := h.subSvc.Create(c.Request.Context(), p, contractID, &req)
	if err != nil {
		h.handleSubdivisionError(c, err)
		return
	}

	response.Created(c, sub)
}

// GetSubdivision 子项详情
// GET /api/subdivisions/:id
func (h *SubdivisionHandler) GetSubdivision(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "子项ID不能为空")
	if !ok {
		return
	}

	sub, err := h.subSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleSubdivisionError(c, err)
		return
	}

	response.OK(c, sub)
}

// UpdateSubdivision 更新子项
// PUT /api/subdivisions/:id
func (h *SubdivisionHandler) UpdateSubdivision(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "子项ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateSubdivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sub, err := h.subSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleSubdivisionError(c, err)
		return
	}

	response.OK(c, sub)
}

// DeleteSubdivision 删除子项
// DELETE /api/subdivisions/:id
func (h *SubdivisionHandler) DeleteSubdivision(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "子项ID不能为空")
	if !ok {
		return
	}

	if err := h.subSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleSubdivisionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSubdivisionError 统一处理子项业务错误
func (h *SubdivisionHandler) handleSubdivisionError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSubdivisionNotFound):
		response.NotFound(c, 14101, "子项不存在")
	case errors.Is(err, service.ErrSubdivisionCodeExists):
		response.BadRequest(c, 14102, "子项编号在合同内已存在")
	case errors.Is(err, service.ErrSubdivisionHasTasks):
		response.BadRequest(c, 14103, "子项下存在任务，无法删除")
	case errors.Is(err, service.ErrContractNotFound):
		response.NotFound(c, 14001, "合同不存在")
	default:
		response.InternalError(c)
	}
}
