package model

import "time"

// User 用户表 — 对应 users
// 用户从不物理删除，停用通过 is_active 标记
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'executant'"  json:"role"`
	RegionID     *string `gorm:"type:uuid"                                      json:"region_id,omitempty"` // NULL = 不限区域
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Region *Region `gorm:"foreignKey:RegionID;references:RegionID" json:"region,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// UserDepartment 用户部门归属 — 对应 user_departments
type UserDepartment struct {
	UserID       string    `gorm:"type:uuid;primaryKey"               json:"user_id"`
	DepartmentID string    `gorm:"type:uuid;primaryKey"               json:"department_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (UserDepartment) TableName() string { return "user_departments" }
