package repository

import (
	"context"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
)

// RegionRepository 区域数据访问接口
type RegionRepository interface {
	Create(ctx context.Context, region *model.Region) error
	GetByID(ctx context.Context, id string) (*model.Region, error)
	List(ctx context.Context, filter authz.RegionFilter) ([]model.Region, error)
	Update(ctx context.Context, region *model.Region) error
	Delete(ctx context.Context, id string) error
	CountContracts(ctx context.Context, regionID string) (int64, error)
}

type regionRepo struct {
	db *gorm.DB
}

// NewRegionRepo 创建 RegionRepository 实例
func NewRegionRepo(db *gorm.DB) RegionRepository {
	return &regionRepo{db: db}
}

func (r *regionRepo) Create(ctx context.Context, region *model.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

func (r *regionRepo) GetByID(ctx context.Context, id string) (*model.Region, error) {
	var region model.Region
	if err := r.db.WithContext(ctx).Where("region_id = ?", id).First(&region).Error; err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *regionRepo) List(ctx context.Context, filter authz.RegionFilter) ([]model.Region, error) {
	var regions []model.Region
	err := r.db.WithContext(ctx).
		Scopes(scopeRegion("region_id", filter)).
		Order("name ASC").
		Find(&regions).Error
	return regions, err
}

func (r *regionRepo) Update(ctx context.Context, region *model.Region) error {
	return r.db.WithContext(ctx).
		Model(&model.Region{}).
		Where("region_id = ?", region.RegionID).
		Updates(map[string]interface{}{
			"name":       region.Name,
			"manager_id": region.ManagerID,
			"updated_by": region.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *regionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("region_id = ?", id).Delete(&model.Region{}).Error
}

func (r *regionRepo) CountContracts(ctx context.Context, regionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("region_id = ?", regionID).
		Count(&count).Error
	return count, err
}
