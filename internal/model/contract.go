package model

// 合同状态
const (
	ContractStatusPlanning  = "planning"
	ContractStatusActive    = "active"
	ContractStatusOnHold    = "on_hold"
	ContractStatusCompleted = "completed"
)

// Contract 合同表 — 对应 contracts，隶属唯一区域
type Contract struct {
	ContractID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contract_id"`
	RegionID           string  `gorm:"type:uuid;not null;index"                       json:"region_id"`
	Name               string  `gorm:"type:varchar(200);not null"                     json:"name"`
	ManagerID          *string `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	Status             string  `gorm:"type:varchar(20);not null;default:'planning'"   json:"status"`
	ProgressPercentage int     `gorm:"not null;default:0"                             json:"progress_percentage"`
	VersionedModel

	// 关联
	Region *Region `gorm:"foreignKey:RegionID;references:RegionID" json:"region,omitempty"`
}

// TableName 指定表名
func (Contract) TableName() string { return "contracts" }
