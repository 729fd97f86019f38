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

// RegionService 区域业务接口
type RegionService interface {
	List(ctx context.Context, p authz.Principal) ([]dto.RegionResponse, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.RegionResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateRegionRequest) (*dto.RegionResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateRegionRequest) (*dto.RegionResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type regionService struct {
	base
}

// NewRegionService 创建 RegionService 实例
func NewRegionService(b base) RegionService {
	return &regionService{base: b}
}

func (s *regionService) List(ctx context.Context, p authz.Principal) ([]dto.RegionResponse, error) {
	regions, err := s.repo.Region.List(ctx, s.authz.AllowedRegionFilter(p))
	if err != nil {
		s.logger.Error("列出区域失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RegionResponse, 0, len(regions))
	for i := range regions {
		r := &regions[i]
		result = append(result, toRegionResponse(r, s.authz.Permissions(p, authz.RegionRef(r.RegionID))))
	}
	return result, nil
}

func (s *regionService) Get(ctx context.Context, p authz.Principal, id string) (*dto.RegionResponse, error) {
	region, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := authz.RegionRef(region.RegionID)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}
	resp := toRegionResponse(region, s.authz.Permissions(p, ref))
	return &resp, nil
}

func (s *regionService) Create(ctx context.Context, p authz.Principal, req *dto.CreateRegionRequest) (*dto.RegionResponse, error) {
	if err := s.authz.Authorize(p, authz.OpCreate, authz.RegionRef("")); err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, req.ManagerID, ""); err != nil {
		return nil, err
	}

	callerID := p.ID()
	region := &model.Region{
		Name:      req.Name,
		ManagerID: req.ManagerID,
		BaseModel: model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Region.Create(ctx, region); err != nil {
		s.logger.Error("创建区域失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("区域已创建", zap.String("region_id", region.RegionID), zap.String("by", callerID))

	resp := toRegionResponse(region, s.authz.Permissions(p, authz.RegionRef(region.RegionID)))
	return &resp, nil
}

func (s *regionService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateRegionRequest) (*dto.RegionResponse, error) {
	region, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := authz.RegionRef(region.RegionID)
	if err := s.authz.Authorize(p, authz.OpEdit, ref); err != nil {
		return nil, err
	}

	if req.Name != nil {
		region.Name = *req.Name
	}
	if req.ManagerID != nil {
		if err := s.checkManager(ctx, req.ManagerID, id); err != nil {
			return nil, err
		}
		region.ManagerID = req.ManagerID
	}

	callerID := p.ID()
	region.UpdatedBy = &callerID
	if err := s.repo.Region.Update(ctx, region); err != nil {
		s.logger.Error("更新区域失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toRegionResponse(region, s.authz.Permissions(p, ref))
	return &resp, nil
}

func (s *regionService) Delete(ctx context.Context, p authz.Principal, id string) error {
	region, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, authz.RegionRef(region.RegionID)); err != nil {
		return err
	}

	count, err := s.repo.Region.CountContracts(ctx, id)
	if err != nil {
		s.logger.Error("统计区域合同失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrRegionHasContracts
	}

	if err := s.repo.Region.Delete(ctx, id); err != nil {
		s.logger.Error("删除区域失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("区域已删除", zap.String("region_id", id), zap.String("by", p.ID()))
	return nil
}

func (s *regionService) load(ctx context.Context, id string) (*model.Region, error) {
	region, err := s.repo.Region.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		s.logger.Error("查询区域失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return region, nil
}

// checkManager 区域负责人须为总监及以上，且属于该区域或不限区域
func (s *regionService) checkManager(ctx context.Context, managerID *string, regionID string) error {
	if managerID == nil {
		return nil
	}
	user, err := s.loadUser(ctx, *managerID)
	if err != nil {
		return err
	}
	if roleOf(user).Level() < authz.LevelDirector || !user.IsActive {
		return ErrRegionManagerRole
	}
	if user.RegionID != nil && *user.RegionID != regionID {
		return ErrRegionManagerRole
	}
	return nil
}
