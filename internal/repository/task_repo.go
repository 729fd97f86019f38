package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
	pkgerrors "atlas/pkg/errors"
)

// TaskScope 任务归属链与授权相关属性
// 上级实体缺失时对应字段为空，由调用方判定归属链断裂
type TaskScope struct {
	TaskID            string
	SubdivisionID     *string
	SubdivisionCode   *string
	ContractID        *string
	ContractName      *string
	ContractManagerID *string
	RegionID          *string
	RegionManagerID   *string
	AssigneeIDs       []string `gorm:"-"`
	DepartmentIDs     []string `gorm:"-"`
}

// TaskListFilter 任务列表查询条件
type TaskListFilter struct {
	Region        authz.RegionFilter
	Status        string
	AssigneeID    string
	SubdivisionID string
	Offset        int
	Limit         int
}

// TaskRepository 任务数据访问接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task, assigneeIDs, departmentIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	GetScope(ctx context.Context, id string) (*TaskScope, error)
	List(ctx context.Context, filter TaskListFilter) ([]model.Task, int64, error)
	// Update 乐观锁更新；resetReminders 为 true 时同时清空提醒与逾期标记
	Update(ctx context.Context, task *model.Task, resetReminders bool) error
	Delete(ctx context.Context, id string, deletedBy string) error

	ListAssigneeIDs(ctx context.Context, taskID string) ([]string, error)
	ReplaceAssignees(ctx context.Context, taskID string, userIDs []string) error
	ListDepartmentIDs(ctx context.Context, taskID string) ([]string, error)
	ReplaceDepartments(ctx context.Context, taskID string, departmentIDs []string) error

	AddComment(ctx context.Context, comment *model.TaskComment) error
	ListComments(ctx context.Context, taskID string) ([]model.TaskComment, error)

	// 提醒任务
	ListDueForReminder(ctx context.Context, now, until time.Time) ([]model.Task, error)
	MarkReminderSent(ctx context.Context, taskID string, at time.Time) (bool, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.Task, error)
	MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) (bool, error)
	ListAssignedWithDeadline(ctx context.Context, userID string) ([]model.Task, error)
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

// ────────── 基本读写 ──────────

// Create 在同一事务中写入任务及其执行人、部门标签
func (r *taskRepo) Create(ctx context.Context, task *model.Task, assigneeIDs, departmentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if err := insertAssignees(tx, task.TaskID, assigneeIDs); err != nil {
			return err
		}
		return insertDepartments(tx, task.TaskID, departmentIDs)
	})
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetScope 沿 subdivision → contract → region 解析任务归属
// 使用 LEFT JOIN，上级被删除时仍返回任务本身
func (r *taskRepo) GetScope(ctx context.Context, id string) (*TaskScope, error) {
	var scope TaskScope
	result := r.db.WithContext(ctx).
		Table("tasks t").
		Select(`t.task_id,
			s.subdivision_id, s.code AS subdivision_code,
			c.contract_id, c.name AS contract_name, c.manager_id AS contract_manager_id,
			c.region_id, rg.manager_id AS region_manager_id`).
		Joins("LEFT JOIN subdivisions s ON s.subdivision_id = t.subdivision_id AND s.deleted_at IS NULL").
		Joins("LEFT JOIN contracts c ON c.contract_id = s.contract_id AND c.deleted_at IS NULL").
		Joins("LEFT JOIN regions rg ON rg.region_id = c.region_id").
		Where("t.task_id = ? AND t.deleted_at IS NULL", id).
		Limit(1).
		Scan(&scope)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var err error
	if scope.AssigneeIDs, err = r.ListAssigneeIDs(ctx, id); err != nil {
		return nil, err
	}
	if scope.DepartmentIDs, err = r.ListDepartmentIDs(ctx, id); err != nil {
		return nil, err
	}
	return &scope, nil
}

func (r *taskRepo) List(ctx context.Context, filter TaskListFilter) ([]model.Task, int64, error) {
	var tasks []model.Task
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Scopes(joinTaskChain, scopeRegion("c.region_id", filter.Region))
	if filter.Status != "" {
		db = db.Where("tasks.status = ?", filter.Status)
	}
	if filter.SubdivisionID != "" {
		db = db.Where("tasks.subdivision_id = ?", filter.SubdivisionID)
	}
	if filter.AssigneeID != "" {
		db = db.Where("EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = tasks.task_id AND ta.user_id = ?)", filter.AssigneeID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Select("tasks.*").
		Scopes(paginate(filter.Offset, filter.Limit)).
		Order("tasks.deadline ASC NULLS LAST, tasks.created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update 基于 version 的乐观锁更新
// 提醒标记由提醒任务独立写入且不递增 version，仅在截止时间变更时清空
func (r *taskRepo) Update(ctx context.Context, task *model.Task, resetReminders bool) error {
	oldVersion := task.Version
	fields := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"deadline":    task.Deadline,
		"updated_by":  task.UpdatedBy,
		"updated_at":  gorm.Expr("NOW()"),
		"version":     oldVersion + 1,
	}
	if resetReminders {
		fields["reminder_sent_at"] = nil
		fields["overdue_notified_at"] = nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND version = ?", task.TaskID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version = oldVersion + 1
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ────────── 执行人与部门 ──────────

func (r *taskRepo) ListAssigneeIDs(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *taskRepo) ReplaceAssignees(ctx context.Context, taskID string, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskAssignee{}).Error; err != nil {
			return err
		}
		return insertAssignees(tx, taskID, userIDs)
	})
}

func (r *taskRepo) ListDepartmentIDs(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TaskDepartment{}).
		Where("task_id = ?", taskID).
		Pluck("department_id", &ids).Error
	return ids, err
}

func (r *taskRepo) ReplaceDepartments(ctx context.Context, taskID string, departmentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskDepartment{}).Error; err != nil {
			return err
		}
		return insertDepartments(tx, taskID, departmentIDs)
	})
}

func insertAssignees(tx *gorm.DB, taskID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]model.TaskAssignee, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, model.TaskAssignee{TaskID: taskID, UserID: id})
	}
	return tx.Create(&rows).Error
}

func insertDepartments(tx *gorm.DB, taskID string, departmentIDs []string) error {
	if len(departmentIDs) == 0 {
		return nil
	}
	rows := make([]model.TaskDepartment, 0, len(departmentIDs))
	for _, id := range departmentIDs {
		rows = append(rows, model.TaskDepartment{TaskID: taskID, DepartmentID: id})
	}
	return tx.Create(&rows).Error
}

// ────────── 评论 ──────────

func (r *taskRepo) AddComment(ctx context.Context, comment *model.TaskComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *taskRepo) ListComments(ctx context.Context, taskID string) ([]model.TaskComment, error) {
	var comments []model.TaskComment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ────────── 提醒 ──────────

// ListDueForReminder 截止时间落在 (now, until] 且尚未提醒的未完成任务
func (r *taskRepo) ListDueForReminder(ctx context.Context, now, until time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("status <> ? AND deadline > ? AND deadline <= ? AND reminder_sent_at IS NULL",
			model.TaskStatusCompleted, now, until).
		Order("deadline ASC").
		Find(&tasks).Error
	return tasks, err
}

// MarkReminderSent 条件更新，返回 false 表示已被其他进程标记
func (r *taskRepo) MarkReminderSent(ctx context.Context, taskID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND reminder_sent_at IS NULL", taskID).
		UpdateColumn("reminder_sent_at", at)
	return result.RowsAffected > 0, result.Error
}

func (r *taskRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("status <> ? AND deadline <= ? AND overdue_notified_at IS NULL",
			model.TaskStatusCompleted, now).
		Order("deadline ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND overdue_notified_at IS NULL", taskID).
		UpdateColumn("overdue_notified_at", at)
	return result.RowsAffected > 0, result.Error
}

// ListAssignedWithDeadline 用户被指派且设置了截止时间的任务（日历订阅）
func (r *taskRepo) ListAssignedWithDeadline(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN task_assignees ta ON ta.task_id = tasks.task_id").
		Where("ta.user_id = ? AND tasks.deadline IS NOT NULL", userID).
		Order("tasks.deadline ASC").
		Find(&tasks).Error
	return tasks, err
}
