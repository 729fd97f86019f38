package model

// 问题状态
const (
	IssueStatusOpen     = "open"
	IssueStatusAnswered = "answered"
	IssueStatusClosed   = "closed"
	IssueStatusArchived = "archived"
)

// Issue 问题讨论表 — 对应 issues
// region_id 为 NULL 表示全局问题，仅管理员可见
type Issue struct {
	IssueID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"issue_id"`
	RegionID     *string `gorm:"type:uuid"                                      json:"region_id,omitempty"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	Title        string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Body         string  `gorm:"type:text;not null"                             json:"body"`
	Status       string  `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	BaseModel
}

// TableName 指定表名
func (Issue) TableName() string { return "issues" }

// IsGlobal 是否为全局问题
func (i *Issue) IsGlobal() bool { return i.RegionID == nil }

// IssueComment 问题回复 — 对应 issue_comments
type IssueComment struct {
	CommentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	IssueID   string `gorm:"type:uuid;not null"                             json:"issue_id"`
	UserID    string `gorm:"type:uuid;not null"                             json:"user_id"`
	Body      string `gorm:"type:text;not null"                             json:"body"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (IssueComment) TableName() string { return "issue_comments" }
