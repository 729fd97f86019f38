package notifier

import "time"

// EventType 领域事件类型
type EventType string

const (
	EventTaskAssigned        EventType = "task_assigned"
	EventTaskCommented       EventType = "task_commented"
	EventIssueCommented      EventType = "issue_commented"
	EventTaskBlocked         EventType = "task_blocked"
	EventTaskOverdue         EventType = "task_overdue"
	EventDeadlineApproaching EventType = "deadline_approaching"
	EventAnnouncement        EventType = "announcement"
)

// Payload 渲染通知模板所需的事件数据
type Payload struct {
	ActorID         string
	ActorName       string
	TaskID          string
	TaskTitle       string
	IssueID         string
	IssueTitle      string
	ContractName    string
	SubdivisionCode string
	Deadline        *time.Time
	// Text 评论摘要或公告正文
	Text string
	// Title 公告标题
	Title string
	// Link 覆盖模板生成的默认链接
	Link string
}

// Event 一次待分发的领域事件
type Event struct {
	Type    EventType
	Payload Payload
	// Global 为 true 时额外向全局频道推送
	Global bool
}
