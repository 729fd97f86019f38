package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	"atlas/internal/notifier"
	"atlas/internal/repository"
	pkgerrors "atlas/pkg/errors"
)

// TaskService 任务业务接口
type TaskService interface {
	List(ctx context.Context, p authz.Principal, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error)
	Get(ctx context.Context, p authz.Principal, id string) (*dto.TaskResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	ChangeStatus(ctx context.Context, p authz.Principal, id string, req *dto.ChangeTaskStatusRequest) (*dto.TaskResponse, error)
	SetAssignees(ctx context.Context, p authz.Principal, id string, req *dto.SetAssigneesRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error

	AddComment(ctx context.Context, p authz.Principal, id string, req *dto.CommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, p authz.Principal, id string) ([]dto.CommentResponse, error)
}

type taskService struct {
	base
	dispatcher Dispatcher
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(b base, dispatcher Dispatcher) TaskService {
	return &taskService{base: b, dispatcher: dispatcher}
}

// ────────────────────── List / Get ──────────────────────

func (s *taskService) List(ctx context.Context, p authz.Principal, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error) {
	filter := repository.TaskListFilter{
		Region:        s.authz.AllowedRegionFilter(p),
		Status:        req.Status,
		AssigneeID:    req.AssigneeID,
		SubdivisionID: req.SubdivisionID,
		Offset:        req.GetOffset(),
		Limit:         req.GetPageSize(),
	}
	if req.Mine {
		filter.AssigneeID = p.ID()
	}

	tasks, total, err := s.repo.Task.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出任务失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, toTaskResponse(&tasks[i]))
	}
	return result, total, nil
}

func (s *taskService) Get(ctx context.Context, p authz.Principal, id string) (*dto.TaskResponse, error) {
	task, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := taskRef(scope)
	if err := s.authz.Authorize(p, authz.OpView, ref); err != nil {
		return nil, err
	}
	return toTaskDetail(task, scope.AssigneeIDs, scope.DepartmentIDs, s.authz.Permissions(p, ref)), nil
}

// ────────────────────── Create ──────────────────────

func (s *taskService) Create(ctx context.Context, p authz.Principal, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	sub, err := s.loadSubdivision(ctx, req.SubdivisionID)
	if err != nil {
		return nil, err
	}
	regionID := ""
	var contractManagerID *string
	if sub.Contract != nil {
		regionID = sub.Contract.RegionID
		contractManagerID = sub.Contract.ManagerID
	}

	assignees := dedupeIDs(req.AssigneeIDs)
	departments := dedupeIDs(req.DepartmentIDs)
	ref := authz.TaskRef("", regionID, assignees, departments, contractManagerID)
	if err := s.authz.Authorize(p, authz.OpCreate, ref); err != nil {
		return nil, err
	}
	if err := s.checkAssignees(ctx, regionID, assignees); err != nil {
		return nil, err
	}
	if err := s.checkDepartments(ctx, departments); err != nil {
		return nil, err
	}

	callerID := p.ID()
	task := &model.Task{
		SubdivisionID: sub.SubdivisionID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        model.TaskStatusNew,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}
	task.CreatedBy = &callerID
	if err := s.repo.Task.Create(ctx, task, assignees, departments); err != nil {
		s.logger.Error("创建任务失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("任务已创建", zap.String("task_id", task.TaskID), zap.String("by", callerID))

	s.notifyAssigned(ctx, p, task, nil, assignees)

	ref.ID = task.TaskID
	return toTaskDetail(task, assignees, departments, s.authz.Permissions(p, ref)), nil
}

// ────────────────────── Update ──────────────────────

func (s *taskService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := taskRef(scope)
	if err := s.authz.Authorize(p, authz.OpEdit, ref); err != nil {
		return nil, err
	}

	task.Version = req.Version
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	deadlineChanged := false
	if req.ClearDeadline || req.Deadline != nil {
		next := req.Deadline
		if req.ClearDeadline {
			next = nil
		}
		deadlineChanged = !sameTime(task.Deadline, next)
		task.Deadline = next
		// 截止时间变更后重新提醒
		if deadlineChanged {
			task.ReminderSentAt = nil
			task.OverdueNotifiedAt = nil
		}
	}

	departments := scope.DepartmentIDs
	if req.DepartmentIDs != nil {
		departments = dedupeIDs(*req.DepartmentIDs)
		if err := s.checkDepartments(ctx, departments); err != nil {
			return nil, err
		}
		// 重新打标签后调用者必须仍有编辑权
		next := ref
		next.DepartmentIDs = departments
		if err := s.authz.Authorize(p, authz.OpEdit, next); err != nil {
			return nil, err
		}
	}

	callerID := p.ID()
	task.UpdatedBy = &callerID
	if err := s.repo.Task.Update(ctx, task, deadlineChanged); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新任务失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	if req.DepartmentIDs != nil {
		if err := s.repo.Task.ReplaceDepartments(ctx, id, departments); err != nil {
			s.logger.Error("更新任务部门失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	ref.DepartmentIDs = departments
	return toTaskDetail(task, scope.AssigneeIDs, departments, s.authz.Permissions(p, ref)), nil
}

// ────────────────────── ChangeStatus ──────────────────────

func (s *taskService) ChangeStatus(ctx context.Context, p authz.Principal, id string, req *dto.ChangeTaskStatusRequest) (*dto.TaskResponse, error) {
	task, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := taskRef(scope)
	if err := s.authz.Authorize(p, authz.OpChangeStatus, ref); err != nil {
		return nil, err
	}

	previous := task.Status
	task.Status = req.Status
	task.Version = req.Version
	callerID := p.ID()
	task.UpdatedBy = &callerID
	if err := s.repo.Task.Update(ctx, task, false); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新任务状态失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("任务状态已变更",
		zap.String("task_id", id),
		zap.String("from", previous),
		zap.String("to", task.Status),
		zap.String("by", callerID),
	)

	if task.Status == model.TaskStatusBlocked && previous != model.TaskStatusBlocked {
		ev := notifier.Event{Type: notifier.EventTaskBlocked, Payload: s.payload(ctx, p, task, scope)}
		recipients := notifier.EscalationRecipients(scope.AssigneeIDs, scope.ContractManagerID, scope.RegionManagerID)
		s.dispatcher.Dispatch(context.WithoutCancel(ctx), ev, recipients)
	}

	return toTaskDetail(task, scope.AssigneeIDs, scope.DepartmentIDs, s.authz.Permissions(p, ref)), nil
}

// ────────────────────── SetAssignees ──────────────────────

// SetAssignees 整体替换执行人，只通知新增的执行人
func (s *taskService) SetAssignees(ctx context.Context, p authz.Principal, id string, req *dto.SetAssigneesRequest) (*dto.TaskResponse, error) {
	task, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := taskRef(scope)
	if err := s.authz.Authorize(p, authz.OpEdit, ref); err != nil {
		return nil, err
	}
	// 执行人即使被指派也不能调整指派关系
	if p.Level() < authz.LevelManager {
		return nil, authz.ErrDenied
	}

	after := dedupeIDs(req.AssigneeIDs)
	if err := s.checkAssignees(ctx, deref(scope.RegionID), after); err != nil {
		return nil, err
	}
	if err := s.repo.Task.ReplaceAssignees(ctx, id, after); err != nil {
		s.logger.Error("更新任务执行人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.notifyAssigned(ctx, p, task, scope, after)

	ref.AssigneeIDs = after
	return toTaskDetail(task, after, scope.DepartmentIDs, s.authz.Permissions(p, ref)), nil
}

// ────────────────────── Delete ──────────────────────

func (s *taskService) Delete(ctx context.Context, p authz.Principal, id string) error {
	_, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(p, authz.OpDelete, taskRef(scope)); err != nil {
		return err
	}
	if err := s.repo.Task.Delete(ctx, id, p.ID()); err != nil {
		s.logger.Error("删除任务失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("任务已删除", zap.String("task_id", id), zap.String("by", p.ID()))
	return nil
}

// ────────────────────── 评论 ──────────────────────

func (s *taskService) AddComment(ctx context.Context, p authz.Principal, id string, req *dto.CommentRequest) (*dto.CommentResponse, error) {
	task, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpComment, taskRef(scope)); err != nil {
		return nil, err
	}

	callerID := p.ID()
	comment := &model.TaskComment{
		TaskID: id,
		UserID: callerID,
		Body:   req.Body,
	}
	comment.CreatedBy = &callerID
	if err := s.repo.Task.AddComment(ctx, comment); err != nil {
		s.logger.Error("添加任务评论失败", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}

	// 参与人：执行人 + 创建人
	participants := append([]string{}, scope.AssigneeIDs...)
	if task.CreatedBy != nil {
		participants = append(participants, *task.CreatedBy)
	}
	payload := s.payload(ctx, p, task, scope)
	payload.Text = req.Body
	s.dispatcher.Dispatch(context.WithoutCancel(ctx),
		notifier.Event{Type: notifier.EventTaskCommented, Payload: payload},
		notifier.CommentRecipients(participants, callerID),
	)

	resp := toTaskCommentResponse(comment)
	resp.AuthorName = payload.ActorName
	return &resp, nil
}

func (s *taskService) ListComments(ctx context.Context, p authz.Principal, id string) ([]dto.CommentResponse, error) {
	_, scope, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, authz.OpView, taskRef(scope)); err != nil {
		return nil, err
	}

	comments, err := s.repo.Task.ListComments(ctx, id)
	if err != nil {
		s.logger.Error("查询任务评论失败", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, toTaskCommentResponse(&comments[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// notifyAssigned 对新增执行人分发 TaskAssigned；scope 为 nil 表示新建任务
func (s *taskService) notifyAssigned(ctx context.Context, p authz.Principal, task *model.Task, scope *repository.TaskScope, after []string) {
	var before []string
	if scope != nil {
		before = scope.AssigneeIDs
	}
	added := notifier.NewAssignees(before, after)
	if len(added) == 0 {
		return
	}
	if scope == nil {
		loaded, err := s.repo.Task.GetScope(ctx, task.TaskID)
		if err == nil {
			scope = loaded
		}
	}
	ev := notifier.Event{Type: notifier.EventTaskAssigned, Payload: s.payload(ctx, p, task, scope)}
	s.dispatcher.Dispatch(context.WithoutCancel(ctx), ev, added)
}

func (s *taskService) payload(ctx context.Context, p authz.Principal, task *model.Task, scope *repository.TaskScope) notifier.Payload {
	payload := notifier.Payload{
		ActorID:   p.ID(),
		ActorName: s.displayName(ctx, p.ID()),
		TaskID:    task.TaskID,
		TaskTitle: task.Title,
		Deadline:  task.Deadline,
	}
	if scope != nil {
		payload.ContractName = deref(scope.ContractName)
		payload.SubdivisionCode = deref(scope.SubdivisionCode)
	}
	return payload
}

// checkAssignees 执行人必须在职，且属于任务所在区域或不限区域
func (s *taskService) checkAssignees(ctx context.Context, regionID string, ids []string) error {
	for _, id := range ids {
		user, err := s.repo.User.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssigneeInvalid
			}
			return err
		}
		if !user.IsActive {
			return ErrAssigneeInvalid
		}
		if user.RegionID != nil && *user.RegionID != regionID {
			return ErrAssigneeInvalid
		}
	}
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
