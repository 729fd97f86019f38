package dto

// ── 用户管理 DTO ──

// CreateUserRequest 创建用户请求
// 非管理员创建时 region_id 被强制为调用者所在区域
type CreateUserRequest struct {
	Name          string   `json:"name"           binding:"required,min=2,max=100"`
	Email         string   `json:"email"          binding:"required,email"`
	Password      string   `json:"password"       binding:"required,min=8,max=64"`
	Role          string   `json:"role"           binding:"required,oneof=admin director manager executant auditor"`
	RegionID      *string  `json:"region_id"      binding:"omitempty,uuid"`
	DepartmentIDs []string `json:"department_ids" binding:"omitempty,dive,uuid"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name          *string   `json:"name"           binding:"omitempty,min=2,max=100"`
	Role          *string   `json:"role"           binding:"omitempty,oneof=admin director manager executant auditor"`
	RegionID      *string   `json:"region_id"      binding:"omitempty,uuid"`
	ClearRegion   bool      `json:"clear_region"`
	DepartmentIDs *[]string `json:"department_ids" binding:"omitempty,dive,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
}

// SetUserActiveRequest 启用或停用用户
type SetUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
