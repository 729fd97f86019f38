package model

import "time"

// Department 部门表 — 对应 departments，跨区域的分类维度
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(50);not null"                      json:"name"`
	Color        string `gorm:"type:varchar(7);not null;default:'#6c757d'"     json:"color"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// DepartmentHead 部门负责人 — 对应 department_heads
// (department_id, region_id) 唯一：每个区域的每个部门只有一名负责人
type DepartmentHead struct {
	DepartmentID string    `gorm:"type:uuid;primaryKey"               json:"department_id"`
	RegionID     string    `gorm:"type:uuid;primaryKey"               json:"region_id"`
	UserID       string    `gorm:"type:uuid;not null;index"           json:"user_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy    *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	User       *User       `gorm:"foreignKey:UserID;references:UserID"             json:"user,omitempty"`
}

// TableName 指定表名
func (DepartmentHead) TableName() string { return "department_heads" }
