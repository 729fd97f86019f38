package model

// Region 区域表 — 对应 regions，组织层级的顶层
type Region struct {
	RegionID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"region_id"`
	Name      string  `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	ManagerID *string `gorm:"type:uuid"                                      json:"manager_id,omitempty"` // 区域总监
	BaseModel
}

// TableName 指定表名
func (Region) TableName() string { return "regions" }
