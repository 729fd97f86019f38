package repository

import (
	"context"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
	pkgerrors "atlas/pkg/errors"
)

// ContractListFilter 合同列表查询条件
type ContractListFilter struct {
	Region authz.RegionFilter
	Status string
	Offset int
	Limit  int
}

// ContractRepository 合同数据访问接口
type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	GetByID(ctx context.Context, id string) (*model.Contract, error)
	List(ctx context.Context, filter ContractListFilter) ([]model.Contract, int64, error)
	Update(ctx context.Context, contract *model.Contract) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountSubdivisions(ctx context.Context, contractID string) (int64, error)
}

type contractRepo struct {
	db *gorm.DB
}

// NewContractRepo 创建 ContractRepository 实例
func NewContractRepo(db *gorm.DB) ContractRepository {
	return &contractRepo{db: db}
}

func (r *contractRepo) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepo) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).
		Preload("Region").
		Where("contract_id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepo) List(ctx context.Context, filter ContractListFilter) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Contract{}).Scopes(scopeRegion("region_id", filter.Region))
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Region").
		Scopes(paginate(filter.Offset, filter.Limit)).
		Order("created_at DESC").
		Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// Update 基于 version 的乐观锁更新
func (r *contractRepo) Update(ctx context.Context, contract *model.Contract) error {
	oldVersion := contract.Version
	result := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("contract_id = ? AND version = ?", contract.ContractID, oldVersion).
		Updates(map[string]interface{}{
			"name":                contract.Name,
			"manager_id":          contract.ManagerID,
			"status":              contract.Status,
			"progress_percentage": contract.ProgressPercentage,
			"updated_by":          contract.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	contract.Version = oldVersion + 1
	return nil
}

func (r *contractRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("contract_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *contractRepo) CountSubdivisions(ctx context.Context, contractID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subdivision{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	return count, err
}
