package repository

import (
	"context"

	"gorm.io/gorm"

	"atlas/internal/model"
)

// SubdivisionRepository 子项数据访问接口
type SubdivisionRepository interface {
	Create(ctx context.Context, sub *model.Subdivision) error
	GetByID(ctx context.Context, id string) (*model.Subdivision, error)
	ListByContract(ctx context.Context, contractID string) ([]model.Subdivision, error)
	Update(ctx context.Context, sub *model.Subdivision) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ExistsCode(ctx context.Context, contractID, code, excludeID string) (bool, error)
	CountTasks(ctx context.Context, subdivisionID string) (int64, error)
}

type subdivisionRepo struct {
	db *gorm.DB
}

// NewSubdivisionRepo 创建 SubdivisionRepository 实例
func NewSubdivisionRepo(db *gorm.DB) SubdivisionRepository {
	return &subdivisionRepo{db: db}
}

func (r *subdivisionRepo) Create(ctx context.Context, sub *model.Subdivision) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// GetByID 预加载所属合同；合同缺失或已删除时 Contract 为 nil，调用方据此判定归属链断裂
func (r *subdivisionRepo) GetByID(ctx context.Context, id string) (*model.Subdivision, error) {
	var sub model.Subdivision
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Where("subdivision_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subdivisionRepo) ListByContract(ctx context.Context, contractID string) ([]model.Subdivision, error) {
	var subs []model.Subdivision
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("code ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subdivisionRepo) Update(ctx context.Context, sub *model.Subdivision) error {
	return r.db.WithContext(ctx).
		Model(&model.Subdivision{}).
		Where("subdivision_id = ?", sub.SubdivisionID).
		Updates(map[string]interface{}{
			"code":       sub.Code,
			"name":       sub.Name,
			"updated_by": sub.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *subdivisionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subdivision{}).
		Where("subdivision_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ExistsCode 合同内 code 唯一性检查
func (r *subdivisionRepo) ExistsCode(ctx context.Context, contractID, code, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Subdivision{}).
		Where("contract_id = ? AND code = ?", contractID, code)
	if excludeID != "" {
		db = db.Where("subdivision_id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subdivisionRepo) CountTasks(ctx context.Context, subdivisionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("subdivision_id = ?", subdivisionID).
		Count(&count).Error
	return count, err
}
