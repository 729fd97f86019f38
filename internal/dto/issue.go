package dto

import "atlas/internal/authz"

// ── 问题模块 DTO ──

// CreateIssueRequest 创建问题请求；region_id 为空表示全局问题（仅管理员）
type CreateIssueRequest struct {
	RegionID     *string `json:"region_id"     binding:"omitempty,uuid"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	Title        string  `json:"title"         binding:"required,min=1,max=200"`
	Body         string  `json:"body"          binding:"required,min=1,max=10000"`
}

// ChangeIssueStatusRequest 修改问题状态
type ChangeIssueStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open answered closed archived"`
}

// IssueListRequest 问题列表查询参数
type IssueListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=open answered closed archived"`
}

// IssueResponse 问题信息
type IssueResponse struct {
	ID           string               `json:"id"`
	RegionID     *string              `json:"region_id"`
	DepartmentID *string              `json:"department_id"`
	Title        string               `json:"title"`
	Body         string               `json:"body"`
	Status       string               `json:"status"`
	CreatedBy    *string              `json:"created_by"`
	CreatedAt    string               `json:"created_at"`
	Permissions  *authz.PermissionSet `json:"permissions,omitempty"`
}
