package dto

import (
	"time"

	"atlas/internal/authz"
)

// ── 任务模块 DTO ──

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	SubdivisionID string     `json:"subdivision_id" binding:"required,uuid"`
	Title         string     `json:"title"          binding:"required,min=1,max=200"`
	Description   string     `json:"description"    binding:"omitempty,max=5000"`
	Priority      string     `json:"priority"       binding:"omitempty,oneof=low medium high critical"`
	Deadline      *time.Time `json:"deadline"`
	AssigneeIDs   []string   `json:"assignee_ids"   binding:"omitempty,dive,uuid"`
	DepartmentIDs []string   `json:"department_ids" binding:"omitempty,dive,uuid"`
}

// UpdateTaskRequest 更新任务请求，version 用于乐观锁
type UpdateTaskRequest struct {
	Title         *string    `json:"title"          binding:"omitempty,min=1,max=200"`
	Description   *string    `json:"description"    binding:"omitempty,max=5000"`
	Priority      *string    `json:"priority"       binding:"omitempty,oneof=low medium high critical"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
	DepartmentIDs *[]string  `json:"department_ids" binding:"omitempty,dive,uuid"`
	Version       int        `json:"version"        binding:"required,min=1"`
}

// ChangeTaskStatusRequest 修改任务状态
type ChangeTaskStatusRequest struct {
	Status  string `json:"status"  binding:"required,oneof=new in_progress blocked review completed"`
	Version int    `json:"version" binding:"required,min=1"`
}

// SetAssigneesRequest 设置执行人（整体替换）
type SetAssigneesRequest struct {
	AssigneeIDs []string `json:"assignee_ids" binding:"omitempty,dive,uuid"`
}

// TaskListRequest 任务列表查询参数
type TaskListRequest struct {
	PaginationRequest
	Status        string `form:"status"         binding:"omitempty,oneof=new in_progress blocked review completed"`
	AssigneeID    string `form:"assignee_id"    binding:"omitempty,uuid"`
	SubdivisionID string `form:"subdivision_id" binding:"omitempty,uuid"`
	Mine          bool   `form:"mine"`
}

// CommentRequest 评论请求（任务与问题共用）
type CommentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=5000"`
}

// TaskResponse 任务信息
type TaskResponse struct {
	ID            string               `json:"id"`
	SubdivisionID string               `json:"subdivision_id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Status        string               `json:"status"`
	Priority      string               `json:"priority"`
	Deadline      *string              `json:"deadline"`
	Version       int                  `json:"version"`
	CreatedBy     *string              `json:"created_by"`
	CreatedAt     string               `json:"created_at"`
	AssigneeIDs   []string             `json:"assignee_ids,omitempty"`
	DepartmentIDs []string             `json:"department_ids,omitempty"`
	Permissions   *authz.PermissionSet `json:"permissions,omitempty"`
}

// CommentResponse 评论信息
type CommentResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name,omitempty"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}
