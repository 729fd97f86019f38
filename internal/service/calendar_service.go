package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"atlas/internal/authz"
)

// CalendarService 任务截止时间的 iCalendar 导出
type CalendarService interface {
	// Feed 当前用户被指派且有截止时间的任务
	Feed(ctx context.Context, p authz.Principal) (string, error)
}

type calendarService struct {
	base
	baseURL string
	now     func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(b base, baseURL string) CalendarService {
	return &calendarService{base: b, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

func (s *calendarService) Feed(ctx context.Context, p authz.Principal) (string, error) {
	tasks, err := s.repo.Task.ListAssignedWithDeadline(ctx, p.ID())
	if err != nil {
		s.logger.Error("查询指派任务失败", zap.String("user_id", p.ID()), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ATLAS//Task Deadlines//ZH")
	cal.SetXWRCalName("ATLAS 任务截止")

	stamp := s.now().UTC()
	for i := range tasks {
		task := &tasks[i]
		if task.Deadline == nil {
			continue
		}
		scope, err := s.repo.Task.GetScope(ctx, task.TaskID)
		if err != nil {
			s.logger.Warn("解析任务归属失败", zap.String("task_id", task.TaskID), zap.Error(err))
			continue
		}
		if !s.authz.CanView(p, taskRef(scope)) {
			continue
		}

		ev := cal.AddEvent(fmt.Sprintf("task-%s@atlas", task.TaskID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(task.Deadline.UTC())
		ev.SetEndAt(task.Deadline.UTC().Add(30 * time.Minute))
		ev.SetSummary(task.Title)

		desc := fmt.Sprintf("状态: %s\n优先级: %s", task.Status, task.Priority)
		if scope.ContractName != nil {
			desc += "\n合同: " + *scope.ContractName
		}
		if scope.SubdivisionCode != nil {
			desc += "\n子项: " + *scope.SubdivisionCode
		}
		ev.SetDescription(desc)
		if s.baseURL != "" {
			ev.SetURL(s.baseURL + "/tasks/" + task.TaskID)
		}

		alarm := ev.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger("-PT1H")
	}

	return cal.Serialize(), nil
}
