package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
)

// UserService 用户管理业务接口
type UserService interface {
	List(ctx context.Context, p authz.Principal, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.UserDetailResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	SetActive(ctx context.Context, p authz.Principal, id string, active bool) error
}

type userService struct {
	base
}

// NewUserService 创建 UserService 实例
func NewUserService(b base) UserService {
	return &userService{base: b}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, p authz.Principal, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, s.authz.AllowedRegionFilter(p), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i], nil))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *userService) Get(ctx context.Context, p authz.Principal, id string) (*dto.UserDetailResponse, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := userRef(user)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}

	depts, err := s.repo.User.ListDepartmentIDs(ctx, id)
	if err != nil {
		s.logger.Error("查询用户部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &dto.UserDetailResponse{
		UserResponse: toUserResponse(user, depts),
		CreatedAt:    dto.FormatTime(user.CreatedAt),
		Permissions:  s.authz.Permissions(p, ref),
	}, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, p authz.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	// 非管理员只能在自己的区域内创建用户
	regionID := req.RegionID
	if p.Level() < authz.LevelAdmin {
		if own, ok := p.RegionID(); ok {
			regionID = &own
		}
	}
	if err := s.authz.Authorize(p, authz.OpCreate, authz.UserRef("", regionID, role)); err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.checkRegion(ctx, regionID); err != nil {
		return nil, err
	}
	if err := s.checkDepartments(ctx, req.DepartmentIDs); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	callerID := p.ID()
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role.String(),
		RegionID:     regionID,
		IsActive:     true,
		BaseModel:    model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	if len(req.DepartmentIDs) > 0 {
		if err := s.repo.User.SetDepartments(ctx, user.UserID, req.DepartmentIDs); err != nil {
			s.logger.Error("设置用户部门失败", zap.String("id", user.UserID), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("用户已创建",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("by", callerID),
	)
	resp := toUserResponse(user, req.DepartmentIDs)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpEdit, userRef(user)); err != nil {
		return nil, err
	}

	roleChanged := req.Role != nil && *req.Role != user.Role
	regionChanged := req.ClearRegion || (req.RegionID != nil && deref(user.RegionID) != *req.RegionID)
	if (roleChanged || regionChanged) && id == p.ID() {
		return nil, ErrUserSelfRoleChange
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if roleChanged {
		role, err := authz.ParseRole(*req.Role)
		if err != nil {
			return nil, ErrInvalidRole
		}
		user.Role = role.String()
	}
	if regionChanged {
		if req.ClearRegion {
			user.RegionID = nil
		} else {
			if err := s.checkRegion(ctx, req.RegionID); err != nil {
				return nil, err
			}
			user.RegionID = req.RegionID
		}
	}
	// 变更后的目标也必须在调用者的管理范围内
	if roleChanged || regionChanged {
		if err := s.authz.Authorize(p, authz.OpEdit, userRef(user)); err != nil {
			return nil, err
		}
	}

	// 部门列表先于任何写入校验，用户与部门归属一并提交
	if req.DepartmentIDs != nil {
		if err := s.checkDepartments(ctx, *req.DepartmentIDs); err != nil {
			return nil, err
		}
	}

	callerID := p.ID()
	user.UpdatedBy = &callerID
	if req.DepartmentIDs != nil {
		err = s.repo.User.UpdateWithDepartments(ctx, user, *req.DepartmentIDs)
	} else {
		err = s.repo.User.Update(ctx, user)
	}
	if err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	depts, err := s.repo.User.ListDepartmentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(updated, depts)
	return &resp, nil
}

// ────────────────────── SetActive ──────────────────────

// SetActive 停用或恢复用户；停用后的用户无法登录，既有 Token 在下次请求时被拒绝
func (s *userService) SetActive(ctx context.Context, p authz.Principal, id string, active bool) error {
	if id == p.ID() && !active {
		return ErrUserSelfDeactivate
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, userRef(user)); err != nil {
		return err
	}
	if user.IsActive == active {
		return nil
	}

	callerID := p.ID()
	user.IsActive = active
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户状态失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("用户状态已变更", zap.String("user_id", id), zap.Bool("active", active), zap.String("by", callerID))
	return nil
}

// ────────────────────── 校验 ──────────────────────

func (s *userService) checkRegion(ctx context.Context, regionID *string) error {
	if regionID == nil {
		return nil
	}
	if _, err := s.repo.Region.GetByID(ctx, *regionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegionNotFound
		}
		return err
	}
	return nil
}
