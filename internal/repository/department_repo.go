package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"atlas/internal/model"
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	ListAll(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountMembers(ctx context.Context, departmentID string) (int64, error)
	CountExisting(ctx context.Context, ids []string) (int64, error)

	// 部门负责人
	GetHead(ctx context.Context, departmentID, regionID string) (*model.DepartmentHead, error)
	UpsertHead(ctx context.Context, head *model.DepartmentHead) error
	DeleteHead(ctx context.Context, departmentID, regionID string) error
	ListHeads(ctx context.Context, departmentID string) ([]model.DepartmentHead, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) ListAll(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("department_id = ?", dept.DepartmentID).
		Updates(map[string]interface{}{
			"name":       dept.Name,
			"color":      dept.Color,
			"is_active":  dept.IsActive,
			"updated_by": dept.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *departmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("department_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *departmentRepo) CountMembers(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserDepartment{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

// CountExisting 统计给定 ID 中仍存在的部门数量，用于校验请求中的部门列表
func (r *departmentRepo) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("department_id IN ?", ids).
		Count(&count).Error
	return count, err
}

// ── 部门负责人 ──

func (r *departmentRepo) GetHead(ctx context.Context, departmentID, regionID string) (*model.DepartmentHead, error) {
	var head model.DepartmentHead
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND region_id = ?", departmentID, regionID).
		First(&head).Error
	if err != nil {
		return nil, err
	}
	return &head, nil
}

// UpsertHead 每个 (部门, 区域) 只有一名负责人，重复指派时覆盖
func (r *departmentRepo) UpsertHead(ctx context.Context, head *model.DepartmentHead) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "department_id"}, {Name: "region_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "created_by", "created_at"}),
		}).
		Create(head).Error
}

func (r *departmentRepo) DeleteHead(ctx context.Context, departmentID, regionID string) error {
	return r.db.WithContext(ctx).
		Where("department_id = ? AND region_id = ?", departmentID, regionID).
		Delete(&model.DepartmentHead{}).Error
}

func (r *departmentRepo) ListHeads(ctx context.Context, departmentID string) ([]model.DepartmentHead, error) {
	var heads []model.DepartmentHead
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("department_id = ?", departmentID).
		Order("region_id ASC").
		Find(&heads).Error
	return heads, err
}
