package repository

import (
	"context"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// UpdateWithDepartments 在同一事务内更新用户并整体替换部门归属
	UpdateWithDepartments(ctx context.Context, user *model.User, departmentIDs []string) error
	List(ctx context.Context, filter authz.RegionFilter, offset, limit int) ([]model.User, int64, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
	ListDepartmentIDs(ctx context.Context, userID string) ([]string, error)
	SetDepartments(ctx context.Context, userID string, departmentIDs []string) error
	ListHeadGrants(ctx context.Context, userID string) ([]model.DepartmentHead, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Region").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return updateUser(r.db.WithContext(ctx), user)
}

func (r *userRepo) UpdateWithDepartments(ctx context.Context, user *model.User, departmentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateUser(tx, user); err != nil {
			return err
		}
		return replaceDepartments(tx, user.UserID, departmentIDs)
	})
}

func updateUser(db *gorm.DB, user *model.User) error {
	return db.Model(&model.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"role":       user.Role,
			"region_id":  user.RegionID,
			"is_active":  user.IsActive,
			"updated_by": user.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *userRepo) List(ctx context.Context, filter authz.RegionFilter, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{}).Scopes(scopeRegion("region_id", filter))

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Region").
		Scopes(paginate(offset, limit)).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_active = ?", true).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *userRepo) ListDepartmentIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.UserDepartment{}).
		Joins("JOIN departments d ON d.department_id = user_departments.department_id AND d.deleted_at IS NULL").
		Where("user_departments.user_id = ?", userID).
		Pluck("user_departments.department_id", &ids).Error
	return ids, err
}

// SetDepartments 整体替换用户的部门归属
func (r *userRepo) SetDepartments(ctx context.Context, userID string, departmentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceDepartments(tx, userID, departmentIDs)
	})
}

func replaceDepartments(tx *gorm.DB, userID string, departmentIDs []string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&model.UserDepartment{}).Error; err != nil {
		return err
	}
	if len(departmentIDs) == 0 {
		return nil
	}
	rows := make([]model.UserDepartment, 0, len(departmentIDs))
	for _, id := range departmentIDs {
		rows = append(rows, model.UserDepartment{UserID: userID, DepartmentID: id})
	}
	return tx.Create(&rows).Error
}

func (r *userRepo) ListHeadGrants(ctx context.Context, userID string) ([]model.DepartmentHead, error) {
	var heads []model.DepartmentHead
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&heads).Error
	return heads, err
}
