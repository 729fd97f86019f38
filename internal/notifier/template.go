package notifier

import (
	"fmt"
	"unicode/utf8"

	"atlas/internal/model"
)

const excerptLen = 80

// Content 单条通知的展示内容
type Content struct {
	Type    string
	Title   string
	Message string
	Link    string
}

// Render 按事件类型生成通知内容，只依赖事件数据
func Render(ev Event) Content {
	p := ev.Payload
	var c Content

	switch ev.Type {
	case EventTaskAssigned:
		c = Content{
			Type:    model.NotificationTypeInfo,
			Title:   "新任务指派",
			Message: fmt.Sprintf("%s 将任务「%s」指派给了你", actor(p), p.TaskTitle),
			Link:    taskLink(p.TaskID),
		}
	case EventTaskCommented:
		c = Content{
			Type:    model.NotificationTypeInfo,
			Title:   "任务有新评论",
			Message: fmt.Sprintf("%s 评论了任务「%s」：%s", actor(p), p.TaskTitle, excerpt(p.Text)),
			Link:    taskLink(p.TaskID),
		}
	case EventIssueCommented:
		c = Content{
			Type:    model.NotificationTypeInfo,
			Title:   "问题有新回复",
			Message: fmt.Sprintf("%s 回复了问题「%s」：%s", actor(p), p.IssueTitle, excerpt(p.Text)),
			Link:    issueLink(p.IssueID),
		}
	case EventTaskBlocked:
		c = Content{
			Type:    model.NotificationTypeWarning,
			Title:   "任务受阻",
			Message: fmt.Sprintf("任务「%s」%s被标记为受阻", p.TaskTitle, contractSuffix(p)),
			Link:    taskLink(p.TaskID),
		}
	case EventTaskOverdue:
		c = Content{
			Type:    model.NotificationTypeError,
			Title:   "任务已逾期",
			Message: fmt.Sprintf("任务「%s」%s已超过截止时间%s", p.TaskTitle, contractSuffix(p), deadlineText(p)),
			Link:    taskLink(p.TaskID),
		}
	case EventDeadlineApproaching:
		c = Content{
			Type:    model.NotificationTypeWarning,
			Title:   "任务即将到期",
			Message: fmt.Sprintf("任务「%s」即将到期%s", p.TaskTitle, deadlineText(p)),
			Link:    taskLink(p.TaskID),
		}
	case EventAnnouncement:
		title := p.Title
		if title == "" {
			title = "系统公告"
		}
		c = Content{
			Type:    model.NotificationTypeInfo,
			Title:   title,
			Message: p.Text,
		}
	default:
		c = Content{
			Type:    model.NotificationTypeInfo,
			Title:   "通知",
			Message: p.Text,
		}
	}

	if p.Link != "" {
		c.Link = p.Link
	}
	return c
}

func actor(p Payload) string {
	if p.ActorName != "" {
		return p.ActorName
	}
	return "有人"
}

func taskLink(id string) string {
	if id == "" {
		return ""
	}
	return "/tasks/" + id
}

func issueLink(id string) string {
	if id == "" {
		return ""
	}
	return "/issues/" + id
}

func contractSuffix(p Payload) string {
	switch {
	case p.ContractName != "" && p.SubdivisionCode != "":
		return fmt.Sprintf("（%s / %s）", p.ContractName, p.SubdivisionCode)
	case p.ContractName != "":
		return fmt.Sprintf("（%s）", p.ContractName)
	default:
		return ""
	}
}

func deadlineText(p Payload) string {
	if p.Deadline == nil {
		return ""
	}
	return "，截止时间 " + p.Deadline.UTC().Format("2006-01-02 15:04") + " UTC"
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	r := []rune(s)
	return string(r[:excerptLen]) + "…"
}
