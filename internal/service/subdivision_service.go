package service

import (
	"context"

	"go.uber.org/zap"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
)

// SubdivisionService 合同子项业务接口
type SubdivisionService interface {
	ListByContract(ctx context.Context, p authz.Principal, contractID string) ([]dto.SubdivisionResponse, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.SubdivisionResponse, error)
	Create(ctx context.Context, p authz.Principal, contractID string, req *dto.CreateSubdivisionRequest) (*dto.SubdivisionResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateSubdivisionRequest) (*dto.SubdivisionResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type subdivisionService struct {
	base
}

// NewSubdivisionService 创建 SubdivisionService 实例
func NewSubdivisionService(b base) SubdivisionService {
	return &subdivisionService{base: b}
}

func (s *subdivisionService) ListByContract(ctx context.Context, p authz.Principal, contractID string) ([]dto.SubdivisionResponse, error) {
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpView, contractRef(c)); err != nil {
		return nil, err
	}

	subs, err := s.repo.Subdivision.ListByContract(ctx, contractID)
	if err != nil {
		s.logger.Error("列出子项失败", zap.String("contract_id", contractID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubdivisionResponse, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		perms := s.authz.Permissions(p, authz.SubdivisionRef(sub.SubdivisionID, c.RegionID))
		result = append(result, toSubdivisionResponse(sub, perms))
	}
	return result, nil
}

func (s *subdivisionService) Get(ctx context.Context, p authz.Principal, id string) (*dto.SubdivisionResponse, error) {
	sub, err := s.loadSubdivision(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := subdivisionRef(sub)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}
	resp := toSubdivisionResponse(sub, s.authz.Permissions(p, ref))
	return &resp, nil
}

func (s *subdivisionService) Create(ctx context.Context, p authz.Principal, contractID string, req *dto.CreateSubdivisionRequest) (*dto.SubdivisionResponse, error) {
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpCreate, authz.SubdivisionRef("", c.RegionID)); err != nil {
		return nil, err
	}

	exists, err := s.repo.Subdivision.ExistsCode(ctx, contractID, req.Code, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSubdivisionCodeExists
	}

	callerID := p.ID()
	sub := &model.Subdivision{
		ContractID: contractID,
		Code:       req.Code,
		Name:       req.Name,
	}
	sub.CreatedBy = &callerID
	if err := s.repo.Subdivision.Create(ctx, sub); err != nil {
		s.logger.Error("创建子项失败", zap.Error(err))
		return nil, err
	}

	resp := toSubdivisionResponse(sub, s.authz.Permissions(p, authz.SubdivisionRef(sub.SubdivisionID, c.RegionID)))
	return &resp, nil
}

func (s *subdivisionService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateSubdivisionRequest) (*dto.SubdivisionResponse, error) {
	sub, err := s.loadSubdivision(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := subdivisionRef(sub)
	if err := s.authz.Authorize(p, authz.OpEdit, ref); err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != sub.Code {
		exists, err := s.repo.Subdivision.ExistsCode(ctx, sub.ContractID, *req.Code, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrSubdivisionCodeExists
		}
		sub.Code = *req.Code
	}
	if req.Name != nil {
		sub.Name = *req.Name
	}

	callerID := p.ID()
	sub.UpdatedBy = &callerID
	if err := s.repo.Subdivision.Update(ctx, sub); err != nil {
		s.logger.Error("更新子项失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toSubdivisionResponse(sub, s.authz.Permissions(p, ref))
	return &resp, nil
}

func (s *subdivisionService) Delete(ctx context.Context, p authz.Principal, id string) error {
	sub, err := s.loadSubdivision(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, subdivisionRef(sub)); err != nil {
		return err
	}

	count, err := s.repo.Subdivision.CountTasks(ctx, id)
	if err != nil {
		s.logger.Error("统计子项任务失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSubdivisionHasTasks
	}

	if err := s.repo.Subdivision.Delete(ctx, id, p.ID()); err != nil {
		s.logger.Error("删除子项失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
