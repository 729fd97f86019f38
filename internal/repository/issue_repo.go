package repository

import (
	"context"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
)

// IssueListFilter 问题列表查询条件
type IssueListFilter struct {
	Region authz.RegionFilter
	// IncludeGlobal 是否包含 region_id 为空的全局问题
	IncludeGlobal bool
	Status        string
	Offset        int
	Limit         int
}

// IssueRepository 问题数据访问接口
type IssueRepository interface {
	Create(ctx context.Context, issue *model.Issue) error
	GetByID(ctx context.Context, id string) (*model.Issue, error)
	List(ctx context.Context, filter IssueListFilter) ([]model.Issue, int64, error)
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *model.IssueComment) error
	ListComments(ctx context.Context, issueID string) ([]model.IssueComment, error)
	ListParticipantIDs(ctx context.Context, issueID string) ([]string, error)
}

type issueRepo struct {
	db *gorm.DB
}

// NewIssueRepo 创建 IssueRepository 实例
func NewIssueRepo(db *gorm.DB) IssueRepository {
	return &issueRepo{db: db}
}

func (r *issueRepo) Create(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *issueRepo) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	var issue model.Issue
	if err := r.db.WithContext(ctx).Where("issue_id = ?", id).First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepo) List(ctx context.Context, filter IssueListFilter) ([]model.Issue, int64, error) {
	var issues []model.Issue
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Issue{})
	switch {
	case !filter.Region.All:
		db = db.Where("region_id = ?", filter.Region.RegionID)
	case !filter.IncludeGlobal:
		db = db.Where("region_id IS NOT NULL")
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Scopes(paginate(filter.Offset, filter.Limit)).
		Order("created_at DESC").
		Find(&issues).Error; err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *issueRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Issue{}).
		Where("issue_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

// Delete 连同回复一起物理删除
func (r *issueRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", id).Delete(&model.IssueComment{}).Error; err != nil {
			return err
		}
		return tx.Where("issue_id = ?", id).Delete(&model.Issue{}).Error
	})
}

func (r *issueRepo) AddComment(ctx context.Context, comment *model.IssueComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *issueRepo) ListComments(ctx context.Context, issueID string) ([]model.IssueComment, error) {
	var comments []model.IssueComment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("issue_id = ?", issueID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ListParticipantIDs 问题参与人：发起人与所有回复人
func (r *issueRepo) ListParticipantIDs(ctx context.Context, issueID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT created_by FROM issues WHERE issue_id = ? AND created_by IS NOT NULL
		UNION
		SELECT user_id FROM issue_comments WHERE issue_id = ?`, issueID, issueID).
		Scan(&ids).Error
	return ids, err
}
