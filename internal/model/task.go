package model

import "time"

// 任务状态
const (
	TaskStatusNew        = "new"
	TaskStatusInProgress = "in_progress"
	TaskStatusBlocked    = "blocked"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"
)

// 任务优先级
const (
	TaskPriorityLow      = "low"
	TaskPriorityMedium   = "medium"
	TaskPriorityHigh     = "high"
	TaskPriorityCritical = "critical"
)

// Task 任务表 — 对应 tasks
// 区域归属始终经 subdivision → contract → region_id 解析，不做冗余存储
type Task struct {
	TaskID            string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	SubdivisionID     string     `gorm:"type:uuid;not null;index"                       json:"subdivision_id"`
	Title             string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string     `gorm:"type:text;not null;default:''"                  json:"description"`
	Status            string     `gorm:"type:varchar(20);not null;default:'new'"        json:"status"`
	Priority          string     `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	Deadline          *time.Time `gorm:"type:timestamptz"                               json:"deadline,omitempty"`
	ReminderSentAt    *time.Time `gorm:"type:timestamptz"                               json:"-"`
	OverdueNotifiedAt *time.Time `gorm:"type:timestamptz"                               json:"-"`
	VersionedModel

	// 关联
	Subdivision *Subdivision `gorm:"foreignKey:SubdivisionID;references:SubdivisionID" json:"subdivision,omitempty"`
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

// IsOpen 未完成的任务
func (t *Task) IsOpen() bool { return t.Status != TaskStatusCompleted }

// TaskAssignee 任务执行人 — 对应 task_assignees
type TaskAssignee struct {
	TaskID    string    `gorm:"type:uuid;primaryKey"               json:"task_id"`
	UserID    string    `gorm:"type:uuid;primaryKey"               json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (TaskAssignee) TableName() string { return "task_assignees" }

// TaskDepartment 任务部门标签 — 对应 task_departments
type TaskDepartment struct {
	TaskID       string `gorm:"type:uuid;primaryKey" json:"task_id"`
	DepartmentID string `gorm:"type:uuid;primaryKey" json:"department_id"`
}

// TableName 指定表名
func (TaskDepartment) TableName() string { return "task_departments" }

// TaskComment 任务评论 — 对应 task_comments
type TaskComment struct {
	CommentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	TaskID    string `gorm:"type:uuid;not null"                             json:"task_id"`
	UserID    string `gorm:"type:uuid;not null"                             json:"user_id"`
	Body      string `gorm:"type:text;not null"                             json:"body"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TaskComment) TableName() string { return "task_comments" }
