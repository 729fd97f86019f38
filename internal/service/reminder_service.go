package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"atlas/internal/model"
	"atlas/internal/notifier"
	"atlas/internal/repository"
)

// ReminderService 截止提醒与逾期升级，由 atlasctl remind-deadlines 定时调用
type ReminderService interface {
	Run(ctx context.Context, now time.Time) (*ReminderReport, error)
}

// ReminderReport 单次运行的统计
type ReminderReport struct {
	Reminded int `json:"reminded"`
	Overdue  int `json:"overdue"`
	Skipped  int `json:"skipped"`
}

type reminderService struct {
	base
	dispatcher Dispatcher
	window     time.Duration
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(b base, dispatcher Dispatcher, window time.Duration) ReminderService {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &reminderService{base: b, dispatcher: dispatcher, window: window}
}

// Run 先标记再分发，每个任务的每类提醒只触发一次
func (s *reminderService) Run(ctx context.Context, now time.Time) (*ReminderReport, error) {
	report := &ReminderReport{}

	due, err := s.repo.Task.ListDueForReminder(ctx, now, now.Add(s.window))
	if err != nil {
		s.logger.Error("查询即将到期任务失败", zap.Error(err))
		return nil, err
	}
	for i := range due {
		task := &due[i]
		marked, err := s.repo.Task.MarkReminderSent(ctx, task.TaskID, now)
		if err != nil {
			s.logger.Error("标记截止提醒失败", zap.String("task_id", task.TaskID), zap.Error(err))
			return report, err
		}
		if !marked {
			report.Skipped++
			continue
		}
		scope, err := s.repo.Task.GetScope(ctx, task.TaskID)
		if err != nil {
			s.logger.Warn("解析任务归属失败", zap.String("task_id", task.TaskID), zap.Error(err))
			report.Skipped++
			continue
		}
		s.dispatcher.Dispatch(ctx,
			notifier.Event{Type: notifier.EventDeadlineApproaching, Payload: reminderPayload(task, scope)},
			notifier.DeadlineRecipients(scope.AssigneeIDs),
		)
		report.Reminded++
	}

	overdue, err := s.repo.Task.ListOverdue(ctx, now)
	if err != nil {
		s.logger.Error("查询逾期任务失败", zap.Error(err))
		return report, err
	}
	for i := range overdue {
		task := &overdue[i]
		marked, err := s.repo.Task.MarkOverdueNotified(ctx, task.TaskID, now)
		if err != nil {
			s.logger.Error("标记逾期通知失败", zap.String("task_id", task.TaskID), zap.Error(err))
			return report, err
		}
		if !marked {
			report.Skipped++
			continue
		}
		scope, err := s.repo.Task.GetScope(ctx, task.TaskID)
		if err != nil {
			s.logger.Warn("解析任务归属失败", zap.String("task_id", task.TaskID), zap.Error(err))
			report.Skipped++
			continue
		}
		s.dispatcher.Dispatch(ctx,
			notifier.Event{Type: notifier.EventTaskOverdue, Payload: reminderPayload(task, scope)},
			notifier.EscalationRecipients(scope.AssigneeIDs, scope.ContractManagerID, scope.RegionManagerID),
		)
		report.Overdue++
	}

	s.logger.Info("截止提醒执行完成",
		zap.Int("reminded", report.Reminded),
		zap.Int("overdue", report.Overdue),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func reminderPayload(task *model.Task, scope *repository.TaskScope) notifier.Payload {
	return notifier.Payload{
		TaskID:          task.TaskID,
		TaskTitle:       task.Title,
		Deadline:        task.Deadline,
		ContractName:    deref(scope.ContractName),
		SubdivisionCode: deref(scope.SubdivisionCode),
	}
}
