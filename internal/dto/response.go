package dto

import (
	"time"

	"atlas/internal/authz"
)

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// MeResponse 当前主体信息（GET /auth/me）
type MeResponse struct {
	UserResponse
	RoleLevel    int                 `json:"role_level"`
	Unrestricted bool                `json:"unrestricted"`
	HeadGrants   []HeadGrantResponse `json:"head_grants"`
}

// HeadGrantResponse 部门负责人授权
type HeadGrantResponse struct {
	DepartmentID string `json:"department_id"`
	RegionID     string `json:"region_id"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	RegionID      *string  `json:"region_id"`
	RegionName    string   `json:"region_name,omitempty"`
	DepartmentIDs []string `json:"department_ids"`
	IsActive      bool     `json:"is_active"`
}

// UserDetailResponse 用户详情，附带当前主体对该用户的权限
type UserDetailResponse struct {
	UserResponse
	CreatedAt   string              `json:"created_at"`
	Permissions authz.PermissionSet `json:"permissions"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// FormatTime 统一的时间输出格式
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtr 可空时间
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
