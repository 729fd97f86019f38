package model

// Subdivision 子项表 — 对应 subdivisions，code 在合同内唯一
type Subdivision struct {
	SubdivisionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subdivision_id"`
	ContractID    string `gorm:"type:uuid;not null"                             json:"contract_id"`
	Code          string `gorm:"type:varchar(50);not null"                      json:"code"`
	Name          string `gorm:"type:varchar(200);not null"                     json:"name"`
	SoftDeleteModel

	// 关联
	Contract *Contract `gorm:"foreignKey:ContractID;references:ContractID" json:"contract,omitempty"`
}

// TableName 指定表名
func (Subdivision) TableName() string { return "subdivisions" }
