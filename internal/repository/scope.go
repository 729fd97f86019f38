package repository

import (
	"gorm.io/gorm"

	"atlas/internal/authz"
)

// scopeRegion 按解析器给出的区域过滤条件限定查询
func scopeRegion(column string, f authz.RegionFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.All {
			return db
		}
		return db.Where(column+" = ?", f.RegionID)
	}
}

// joinTaskChain 沿 subdivision → contract 连接任务的归属链
func joinTaskChain(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN subdivisions s ON s.subdivision_id = tasks.subdivision_id AND s.deleted_at IS NULL").
		Joins("JOIN contracts c ON c.contract_id = s.contract_id AND c.deleted_at IS NULL")
}

// paginate 统一的分页参数处理
func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		return db.Offset(offset).Limit(limit)
	}
}
