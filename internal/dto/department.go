package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name  string `json:"name"  binding:"required,min=2,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=50"`
	Color    *string `json:"color"     binding:"omitempty,hexcolor"`
	IsActive *bool   `json:"is_active"`
}

// DepartmentListRequest 部门列表查询参数
type DepartmentListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// DepartmentResponse 部门简要信息
type DepartmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DepartmentDetailResponse 部门详细信息响应
type DepartmentDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsActive    bool   `json:"is_active"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ── 部门负责人 DTO ──

// AssignHeadRequest 指派部门负责人请求
type AssignHeadRequest struct {
	RegionID string `json:"region_id" binding:"required,uuid"`
	UserID   string `json:"user_id"   binding:"required,uuid"`
}

// DepartmentHeadResponse 部门负责人
type DepartmentHeadResponse struct {
	DepartmentID string `json:"department_id"`
	RegionID     string `json:"region_id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name,omitempty"`
	AssignedAt   string `json:"assigned_at"`
}
