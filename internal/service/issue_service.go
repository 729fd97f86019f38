package service

import (
	"context"

	"go.uber.org/zap"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	"atlas/internal/notifier"
	"atlas/internal/repository"
)

// IssueService 问题讨论业务接口
type IssueService interface {
	List(ctx context.Context, p authz.Principal, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.IssueResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateIssueRequest) (*dto.IssueResponse, error)
	ChangeStatus(ctx context.Context, p authz.Principal, id string, req *dto.ChangeIssueStatusRequest) (*dto.IssueResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error

	AddComment(ctx context.Context, p authz.Principal, id string, req *dto.CommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, p authz.Principal, id string) ([]dto.CommentResponse, error)
}

type issueService struct {
	base
	dispatcher Dispatcher
}

// NewIssueService 创建 IssueService 实例
func NewIssueService(b base, dispatcher Dispatcher) IssueService {
	return &issueService{base: b, dispatcher: dispatcher}
}

func (s *issueService) List(ctx context.Context, p authz.Principal, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error) {
	issues, total, err := s.repo.Issue.List(ctx, repository.IssueListFilter{
		Region: s.authz.AllowedRegionFilter(p),
		// 全局问题只对管理员可见
		IncludeGlobal: p.Level() >= authz.LevelAdmin,
		Status:        req.Status,
		Offset:        req.GetOffset(),
		Limit:         req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出问题失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		result = append(result, toIssueResponse(&issues[i]))
	}
	return result, total, nil
}

func (s *issueService) Get(ctx context.Context, p authz.Principal, id string) (*dto.IssueResponse, error) {
	issue, err := s.loadIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := issueRef(issue)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}
	resp := toIssueResponse(issue)
	perms := s.authz.Permissions(p, ref)
	resp.Permissions = &perms
	return &resp, nil
}

func (s *issueService) Create(ctx context.Context, p authz.Principal, req *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	regionID := req.RegionID
	// 未指定区域时归入调用者所在区域；只有管理员能创建全局问题
	if regionID == nil && p.Level() < authz.LevelAdmin {
		if own, ok := p.RegionID(); ok {
			regionID = &own
		}
	}
	if err := s.authz.Authorize(p, authz.OpCreate, authz.IssueRef("", regionID)); err != nil {
		return nil, err
	}
	if req.DepartmentID != nil {
		if err := s.checkDepartments(ctx, []string{*req.DepartmentID}); err != nil {
			return nil, err
		}
	}

	callerID := p.ID()
	issue := &model.Issue{
		RegionID:     regionID,
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Body:         req.Body,
		Status:       model.IssueStatusOpen,
		BaseModel:    model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Issue.Create(ctx, issue); err != nil {
		s.logger.Error("创建问题失败", zap.Error(err))
		return nil, err
	}

	resp := toIssueResponse(issue)
	perms := s.authz.Permissions(p, issueRef(issue))
	resp.Permissions = &perms
	return &resp, nil
}

func (s *issueService) ChangeStatus(ctx context.Context, p authz.Principal, id string, req *dto.ChangeIssueStatusRequest) (*dto.IssueResponse, error) {
	issue, err := s.loadIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := issueRef(issue)
	if err := s.authz.Authorize(p, authz.OpChangeStatus, ref); err != nil {
		return nil, err
	}

	if err := s.repo.Issue.UpdateStatus(ctx, id, req.Status, p.ID()); err != nil {
		s.logger.Error("更新问题状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	issue.Status = req.Status

	resp := toIssueResponse(issue)
	perms := s.authz.Permissions(p, ref)
	resp.Permissions = &perms
	return &resp, nil
}

func (s *issueService) Delete(ctx context.Context, p authz.Principal, id string) error {
	issue, err := s.loadIssue(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, issueRef(issue)); err != nil {
		return err
	}
	if err := s.repo.Issue.Delete(ctx, id); err != nil {
		s.logger.Error("删除问题失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *issueService) AddComment(ctx context.Context, p authz.Principal, id string, req *dto.CommentRequest) (*dto.CommentResponse, error) {
	issue, err := s.loadIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpComment, issueRef(issue)); err != nil {
		return nil, err
	}

	callerID := p.ID()
	comment := &model.IssueComment{
		IssueID:   id,
		UserID:    callerID,
		Body:      req.Body,
		BaseModel: model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Issue.AddComment(ctx, comment); err != nil {
		s.logger.Error("添加问题评论失败", zap.String("issue_id", id), zap.Error(err))
		return nil, err
	}

	actorName := s.displayName(ctx, callerID)
	participants, err := s.repo.Issue.ListParticipantIDs(ctx, id)
	if err != nil {
		// 评论已保存，通知失败不影响请求结果
		s.logger.Warn("查询问题参与人失败", zap.String("issue_id", id), zap.Error(err))
	} else {
		ev := notifier.Event{
			Type: notifier.EventIssueCommented,
			Payload: notifier.Payload{
				ActorID:    callerID,
				ActorName:  actorName,
				IssueID:    issue.IssueID,
				IssueTitle: issue.Title,
				Text:       req.Body,
			},
		}
		s.dispatcher.Dispatch(context.WithoutCancel(ctx), ev, notifier.CommentRecipients(participants, callerID))
	}

	resp := toIssueCommentResponse(comment)
	resp.AuthorName = actorName
	return &resp, nil
}

func (s *issueService) ListComments(ctx context.Context, p authz.Principal, id string) ([]dto.CommentResponse, error) {
	issue, err := s.loadIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpView, issueRef(issue)); err != nil {
		return nil, err
	}

	comments, err := s.repo.Issue.ListComments(ctx, id)
	if err != nil {
		s.logger.Error("查询问题评论失败", zap.String("issue_id", id), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, toIssueCommentResponse(&comments[i]))
	}
	return result, nil
}
