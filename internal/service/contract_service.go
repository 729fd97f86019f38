package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	"atlas/internal/repository"
	pkgerrors "atlas/pkg/errors"
)

// ContractService 合同业务接口
type ContractService interface {
	List(ctx context.Context, p authz.Principal, req *dto.ContractListRequest) ([]dto.ContractResponse, int64, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.ContractResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateContractRequest) (*dto.ContractResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type contractService struct {
	base
}

// NewContractService 创建 ContractService 实例
func NewContractService(b base) ContractService {
	return &contractService{base: b}
}

func (s *contractService) List(ctx context.Context, p authz.Principal, req *dto.ContractListRequest) ([]dto.ContractResponse, int64, error) {
	contracts, total, err := s.repo.Contract.List(ctx, repository.ContractListFilter{
		Region: s.authz.AllowedRegionFilter(p),
		Status: req.Status,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出合同失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ContractResponse, 0, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		result = append(result, toContractResponse(c, s.authz.Permissions(p, contractRef(c))))
	}
	return result, total, nil
}

func (s *contractService) Get(ctx context.Context, p authz.Principal, id string) (*dto.ContractResponse, error) {
	c, err := s.loadContract(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := contractRef(c)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}
	resp := toContractResponse(c, s.authz.Permissions(p, ref))
	return &resp, nil
}

func (s *contractService) Create(ctx context.Context, p authz.Principal, req *dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if err := s.authz.Authorize(p, authz.OpCreate, authz.ContractRef("", req.RegionID, req.ManagerID)); err != nil {
		return nil, err
	}
	if _, err := s.repo.Region.GetByID(ctx, req.RegionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}
	if req.ManagerID != nil {
		if err := s.checkManager(ctx, p, req.RegionID, *req.ManagerID); err != nil {
			return nil, err
		}
	}

	callerID := p.ID()
	c := &model.Contract{
		RegionID:           req.RegionID,
		Name:               req.Name,
		ManagerID:          req.ManagerID,
		Status:             req.Status,
		ProgressPercentage: req.ProgressPercentage,
	}
	if c.Status == "" {
		c.Status = model.ContractStatusPlanning
	}
	c.CreatedBy = &callerID
	if err := s.repo.Contract.Create(ctx, c); err != nil {
		s.logger.Error("创建合同失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("合同已创建", zap.String("contract_id", c.ContractID), zap.String("region_id", c.RegionID))

	resp := toContractResponse(c, s.authz.Permissions(p, contractRef(c)))
	return &resp, nil
}

func (s *contractService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	c, err := s.loadContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpEdit, contractRef(c)); err != nil {
		return nil, err
	}
	c.Version = req.Version

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.ManagerID != nil && *req.ManagerID != deref(c.ManagerID) {
		if err := s.checkManager(ctx, p, c.RegionID, *req.ManagerID); err != nil {
			return nil, err
		}
		c.ManagerID = req.ManagerID
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.ProgressPercentage != nil {
		c.ProgressPercentage = *req.ProgressPercentage
	}

	callerID := p.ID()
	c.UpdatedBy = &callerID
	if err := s.repo.Contract.Update(ctx, c); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新合同失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toContractResponse(c, s.authz.Permissions(p, contractRef(c)))
	return &resp, nil
}

func (s *contractService) Delete(ctx context.Context, p authz.Principal, id string) error {
	c, err := s.loadContract(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, contractRef(c)); err != nil {
		return err
	}

	count, err := s.repo.Contract.CountSubdivisions(ctx, id)
	if err != nil {
		s.logger.Error("统计合同子项失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrContractHasSubdivisions
	}

	if err := s.repo.Contract.Delete(ctx, id, p.ID()); err != nil {
		s.logger.Error("删除合同失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// checkManager 指派合同经理：仅总监及以上可操作，
// 被指派人须在职、级别不低于经理，且属于合同所在区域或不限区域
func (s *contractService) checkManager(ctx context.Context, p authz.Principal, regionID, managerID string) error {
	if p.Level() < authz.LevelDirector {
		return authz.ErrDenied
	}
	u, err := s.loadUser(ctx, managerID)
	if err != nil {
		return err
	}
	if !u.IsActive || roleOf(u).Level() < authz.LevelManager {
		return ErrContractManagerInvalid
	}
	if u.RegionID != nil && *u.RegionID != regionID {
		return ErrContractManagerInvalid
	}
	return nil
}
