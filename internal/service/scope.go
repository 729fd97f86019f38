package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
	"atlas/internal/repository"
)

// 以下函数把已加载的记录转换为解析器使用的 EntityRef。
// 归属链缺失时 RegionID 留空，由解析器判定为 DataIntegrityError。

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func roleOf(u *model.User) authz.Role {
	r, err := authz.ParseRole(u.Role)
	if err != nil {
		return authz.RoleUnknown
	}
	return r
}

func userRef(u *model.User) authz.EntityRef {
	return authz.UserRef(u.UserID, u.RegionID, roleOf(u))
}

func contractRef(c *model.Contract) authz.EntityRef {
	return authz.ContractRef(c.ContractID, c.RegionID, c.ManagerID)
}

func subdivisionRef(sub *model.Subdivision) authz.EntityRef {
	region := ""
	if sub.Contract != nil {
		region = sub.Contract.RegionID
	}
	return authz.SubdivisionRef(sub.SubdivisionID, region)
}

func taskRef(scope *repository.TaskScope) authz.EntityRef {
	return authz.TaskRef(scope.TaskID, deref(scope.RegionID), scope.AssigneeIDs, scope.DepartmentIDs, scope.ContractManagerID)
}

func issueRef(i *model.Issue) authz.EntityRef {
	return authz.IssueRef(i.IssueID, i.RegionID)
}

// loadTask 加载任务及其归属链
func (b *base) loadTask(ctx context.Context, id string) (*model.Task, *repository.TaskScope, error) {
	task, err := b.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		b.logger.Error("查询任务失败", zap.String("task_id", id), zap.Error(err))
		return nil, nil, err
	}
	scope, err := b.repo.Task.GetScope(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		b.logger.Error("解析任务归属失败", zap.String("task_id", id), zap.Error(err))
		return nil, nil, err
	}
	return task, scope, nil
}

func (b *base) loadSubdivision(ctx context.Context, id string) (*model.Subdivision, error) {
	sub, err := b.repo.Subdivision.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubdivisionNotFound
		}
		b.logger.Error("查询子项失败", zap.String("subdivision_id", id), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

func (b *base) loadContract(ctx context.Context, id string) (*model.Contract, error) {
	c, err := b.repo.Contract.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		b.logger.Error("查询合同失败", zap.String("contract_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (b *base) loadUser(ctx context.Context, id string) (*model.User, error) {
	u, err := b.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		b.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (b *base) loadIssue(ctx context.Context, id string) (*model.Issue, error) {
	i, err := b.repo.Issue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		b.logger.Error("查询问题失败", zap.String("issue_id", id), zap.Error(err))
		return nil, err
	}
	return i, nil
}

// displayName 查询用户名用于通知文案，失败时返回空
func (b *base) displayName(ctx context.Context, userID string) string {
	u, err := b.repo.User.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Name
}

// checkDepartments 部门列表中的每个 ID 都必须存在
func (b *base) checkDepartments(ctx context.Context, ids []string) error {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := b.repo.Department.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return ErrDepartmentInvalid
	}
	return nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
