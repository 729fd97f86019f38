package dto

import "atlas/internal/authz"

// ── 合同模块 DTO ──

// CreateContractRequest 创建合同请求
type CreateContractRequest struct {
	RegionID           string  `json:"region_id"           binding:"required,uuid"`
	Name               string  `json:"name"                binding:"required,min=2,max=200"`
	ManagerID          *string `json:"manager_id"          binding:"omitempty,uuid"`
	Status             string  `json:"status"              binding:"omitempty,oneof=planning active on_hold completed"`
	ProgressPercentage int     `json:"progress_percentage" binding:"omitempty,min=0,max=100"`
}

// UpdateContractRequest 更新合同请求，version 用于乐观锁
type UpdateContractRequest struct {
	Name               *string `json:"name"                binding:"omitempty,min=2,max=200"`
	ManagerID          *string `json:"manager_id"          binding:"omitempty,uuid"`
	Status             *string `json:"status"              binding:"omitempty,oneof=planning active on_hold completed"`
	ProgressPercentage *int    `json:"progress_percentage" binding:"omitempty,min=0,max=100"`
	Version            int     `json:"version"             binding:"required,min=1"`
}

// ContractListRequest 合同列表查询参数
type ContractListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=planning active on_hold completed"`
}

// ContractResponse 合同信息
type ContractResponse struct {
	ID                 string              `json:"id"`
	RegionID           string              `json:"region_id"`
	RegionName         string              `json:"region_name,omitempty"`
	Name               string              `json:"name"`
	ManagerID          *string             `json:"manager_id"`
	Status             string              `json:"status"`
	ProgressPercentage int                 `json:"progress_percentage"`
	Version            int                 `json:"version"`
	CreatedAt          string              `json:"created_at"`
	Permissions        authz.PermissionSet `json:"permissions"`
}
