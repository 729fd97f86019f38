package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
)

// DepartmentService 部门业务接口
// 部门跨区域存在；部门负责人按 (部门, 区域) 指派
type DepartmentService interface {
	Create(ctx context.Context, p authz.Principal, req *dto.CreateDepartmentRequest) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, p authz.Principal, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, p authz.Principal, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentDetailResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error

	ListHeads(ctx context.Context, p authz.Principal, departmentID string) ([]dto.DepartmentHeadResponse, error)
	AssignHead(ctx context.Context, p authz.Principal, departmentID string, req *dto.AssignHeadRequest) (*dto.DepartmentHeadResponse, error)
	RemoveHead(ctx context.Context, p authz.Principal, departmentID, regionID string) error
}

type departmentService struct {
	base
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(b base) DepartmentService {
	return &departmentService{base: b}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, p authz.Principal, req *dto.CreateDepartmentRequest) (*dto.DepartmentDetailResponse, error) {
	if err := s.authz.Authorize(p, authz.OpCreate, authz.DepartmentRef("")); err != nil {
		return nil, err
	}

	// 检查名称唯一性
	existing, err := s.repo.Department.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentNameExists
	}

	callerID := p.ID()
	dept := &model.Department{
		Name:     req.Name,
		Color:    req.Color,
		IsActive: true,
	}
	if dept.Color == "" {
		dept.Color = "#6c757d"
	}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpView, authz.DepartmentRef(id)); err != nil {
		return nil, err
	}
	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, p authz.Principal, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error) {
	if err := s.authz.Authorize(p, authz.OpView, authz.DepartmentRef("")); err != nil {
		return nil, err
	}

	var depts []model.Department
	var err error
	if req.IncludeInactive {
		depts, err = s.repo.Department.ListAll(ctx)
	} else {
		depts, err = s.repo.Department.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *s.toDepartmentDetailResponse(ctx, &depts[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpEdit, authz.DepartmentRef(id)); err != nil {
		return nil, err
	}

	// 如果更新名称，检查唯一性
	if req.Name != nil && *req.Name != dept.Name {
		existing, err := s.repo.Department.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDepartmentNameExists
		}
		dept.Name = *req.Name
	}
	if req.Color != nil {
		dept.Color = *req.Color
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}

	callerID := p.ID()
	dept.UpdatedBy = &callerID
	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("更新部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, p authz.Principal, id string) error {
	dept, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, authz.DepartmentRef(id)); err != nil {
		return err
	}

	// 检查部门下是否有成员
	count, err := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Error("查询部门成员数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentHasMembers
	}

	if err := s.repo.Department.Delete(ctx, id, p.ID()); err != nil {
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 部门负责人 ──────────────────────

func (s *departmentService) ListHeads(ctx context.Context, p authz.Principal, departmentID string) ([]dto.DepartmentHeadResponse, error) {
	if _, err := s.load(ctx, departmentID); err != nil {
		return nil, err
	}
	heads, err := s.repo.Department.ListHeads(ctx, departmentID)
	if err != nil {
		s.logger.Error("查询部门负责人失败", zap.String("department_id", departmentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentHeadResponse, 0, len(heads))
	for i := range heads {
		h := &heads[i]
		if !s.authz.CanView(p, authz.DepartmentHeadRef(h.DepartmentID, h.RegionID)) {
			continue
		}
		result = append(result, toDepartmentHeadResponse(h))
	}
	return result, nil
}

// AssignHead 指派（或替换）某区域的部门负责人
// 负责人须为经理及以上且属于该区域；等级只在指派时校验
func (s *departmentService) AssignHead(ctx context.Context, p authz.Principal, departmentID string, req *dto.AssignHeadRequest) (*dto.DepartmentHeadResponse, error) {
	if _, err := s.load(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpCreate, authz.DepartmentHeadRef(departmentID, req.RegionID)); err != nil {
		return nil, err
	}
	if _, err := s.repo.Region.GetByID(ctx, req.RegionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}

	user, err := s.loadUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if roleOf(user).Level() < authz.LevelManager || !user.IsActive {
		return nil, ErrHeadRankTooLow
	}
	if user.RegionID != nil && *user.RegionID != req.RegionID {
		return nil, ErrHeadRegionMismatch
	}

	callerID := p.ID()
	head := &model.DepartmentHead{
		DepartmentID: departmentID,
		RegionID:     req.RegionID,
		UserID:       req.UserID,
		CreatedBy:    &callerID,
	}
	if err := s.repo.Department.UpsertHead(ctx, head); err != nil {
		s.logger.Error("指派部门负责人失败", zap.String("department_id", departmentID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("部门负责人已指派",
		zap.String("department_id", departmentID),
		zap.String("region_id", req.RegionID),
		zap.String("user_id", req.UserID),
		zap.String("by", callerID),
	)

	head.User = user
	resp := toDepartmentHeadResponse(head)
	return &resp, nil
}

func (s *departmentService) RemoveHead(ctx context.Context, p authz.Principal, departmentID, regionID string) error {
	if err := s.authz.Authorize(p, authz.OpDelete, authz.DepartmentHeadRef(departmentID, regionID)); err != nil {
		return err
	}
	if _, err := s.repo.Department.GetHead(ctx, departmentID, regionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHeadNotFound
		}
		return err
	}
	if err := s.repo.Department.DeleteHead(ctx, departmentID, regionID); err != nil {
		s.logger.Error("撤销部门负责人失败", zap.String("department_id", departmentID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *departmentService) load(ctx context.Context, id string) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) toDepartmentDetailResponse(ctx context.Context, dept *model.Department) *dto.DepartmentDetailResponse {
	memberCount, _ := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	return &dto.DepartmentDetailResponse{
		ID:          dept.DepartmentID,
		Name:        dept.Name,
		Color:       dept.Color,
		IsActive:    dept.IsActive,
		MemberCount: memberCount,
		CreatedAt:   dto.FormatTime(dept.CreatedAt),
		UpdatedAt:   dto.FormatTime(dept.UpdatedAt),
	}
}

func toDepartmentHeadResponse(h *model.DepartmentHead) dto.DepartmentHeadResponse {
	resp := dto.DepartmentHeadResponse{
		DepartmentID: h.DepartmentID,
		RegionID:     h.RegionID,
		UserID:       h.UserID,
		AssignedAt:   dto.FormatTime(h.CreatedAt),
	}
	if h.User != nil {
		resp.UserName = h.User.Name
	}
	return resp
}
