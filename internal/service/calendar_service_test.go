package service

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestCalendarService_Feed(t *testing.T) {
	w := newTestWorld(t)
	svc := NewCalendarService(w.base, "https://atlas.example.com/")
	deadline := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	w.addTask(t, "task-1", []string{"exec-north"}, nil)
	w.tasks.tasks["task-1"].Deadline = &deadline
	w.addTask(t, "task-2", []string{"exec-north"}, nil) // 无截止时间
	w.addTask(t, "task-3", []string{"exec-north-2"}, nil)
	w.tasks.tasks["task-3"].Deadline = &deadline

	feed, err := svc.Feed(context.Background(), w.principal(t, "exec-north"))
	if err != nil {
		t.Fatalf("Feed 应成功: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Fatalf("输出不是 iCalendar: %s", feed)
	}
	if !strings.Contains(feed, "task-task-1@atlas") {
		t.Errorf("应包含已指派任务的事件")
	}
	if strings.Contains(feed, "task-task-2@atlas") || strings.Contains(feed, "task-task-3@atlas") {
		t.Errorf("不应包含无截止时间或未指派的任务")
	}
	if !strings.Contains(feed, "https://atlas.example.com/tasks/task-1") {
		t.Errorf("应包含任务链接")
	}
	if !strings.Contains(feed, "20260501T090000Z") {
		t.Errorf("应包含截止时间")
	}
}
