package dto

import "atlas/internal/authz"

// ── 区域模块 DTO ──

// CreateRegionRequest 创建区域请求
type CreateRegionRequest struct {
	Name      string  `json:"name"       binding:"required,min=2,max=100"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

// UpdateRegionRequest 更新区域请求
type UpdateRegionRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

// RegionResponse 区域信息
type RegionResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	ManagerID   *string             `json:"manager_id"`
	Permissions authz.PermissionSet `json:"permissions"`
}
