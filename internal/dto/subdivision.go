package dto

import "atlas/internal/authz"

// ── 子项模块 DTO ──

// CreateSubdivisionRequest 创建子项请求
type CreateSubdivisionRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// UpdateSubdivisionRequest 更新子项请求
type UpdateSubdivisionRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
}

// SubdivisionResponse 子项信息
type SubdivisionResponse struct {
	ID          string              `json:"id"`
	ContractID  string              `json:"contract_id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Permissions authz.PermissionSet `json:"permissions"`
}
