package service

import (
	"context"
	"errors"
	"testing"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	"atlas/internal/notifier"
)

func setupTestIssueService(t *testing.T) (IssueService, *testWorld) {
	w := newTestWorld(t)
	w.issues.issues["issue-north"] = &model.Issue{
		IssueID: "issue-north", RegionID: model.StrPtr(regionNorth), Title: "管线冲突", Body: "…",
		Status: model.IssueStatusOpen, BaseModel: model.BaseModel{CreatedBy: model.StrPtr("manager-north")},
	}
	w.issues.issues["issue-global"] = &model.Issue{
		IssueID: "issue-global", Title: "全局规范", Body: "…",
		Status: model.IssueStatusOpen, BaseModel: model.BaseModel{CreatedBy: model.StrPtr("admin")},
	}
	return NewIssueService(w.base, w.dispatcher), w
}

func TestIssueService_GlobalVisibleToAdminOnly(t *testing.T) {
	svc, w := setupTestIssueService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, w.principal(t, "director-north"), "issue-global"); !errors.Is(err, authz.ErrDenied) {
		t.Errorf("总监不应看到全局问题，实际: %v", err)
	}
	if _, err := svc.Get(ctx, w.principal(t, "admin"), "issue-global"); err != nil {
		t.Errorf("管理员应可查看全局问题: %v", err)
	}

	_, total, err := svc.List(ctx, w.principal(t, "director-north"), &dto.IssueListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("总监列表应只有本区域问题，实际=%d", total)
	}
	_, total, err = svc.List(ctx, w.principal(t, "admin"), &dto.IssueListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 {
		t.Errorf("管理员列表应包含全局问题，实际=%d", total)
	}
}

func TestIssueService_Create_DefaultsToOwnRegion(t *testing.T) {
	svc, w := setupTestIssueService(t)

	resp, err := svc.Create(context.Background(), w.principal(t, "manager-north"), &dto.CreateIssueRequest{
		Title: "图纸版本", Body: "以哪版为准？",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.RegionID == nil || *resp.RegionID != regionNorth {
		t.Errorf("期望归入调用者区域，实际=%v", resp.RegionID)
	}

	if _, err := svc.Create(context.Background(), w.principal(t, "exec-north"), &dto.CreateIssueRequest{
		Title: "提问", Body: "…",
	}); !errors.Is(err, authz.ErrDenied) {
		t.Errorf("执行人不能创建问题，实际: %v", err)
	}
}

func TestIssueService_AddComment_NotifiesParticipants(t *testing.T) {
	svc, w := setupTestIssueService(t)
	ctx := context.Background()

	if _, err := svc.AddComment(ctx, w.principal(t, "exec-north"), "issue-north", &dto.CommentRequest{Body: "现场确认过"}); err != nil {
		t.Fatalf("AddComment 应成功: %v", err)
	}
	if _, err := svc.AddComment(ctx, w.principal(t, "director-north"), "issue-north", &dto.CommentRequest{Body: "按新版"}); err != nil {
		t.Fatalf("AddComment 应成功: %v", err)
	}

	calls := w.dispatcher.byType(notifier.EventIssueCommented)
	if len(calls) != 2 {
		t.Fatalf("期望 2 次 IssueCommented 分发，实际=%d", len(calls))
	}
	if got := calls[0].Recipients; len(got) != 1 || got[0] != "manager-north" {
		t.Errorf("第一条评论只应通知创建人，实际=%v", got)
	}
	second := calls[1].Recipients
	if len(second) != 2 || !contains(second, "manager-north") || !contains(second, "exec-north") {
		t.Errorf("第二条评论应通知创建人和先前评论者，实际=%v", second)
	}
}

func TestIssueService_ChangeStatus_ExecutantDenied(t *testing.T) {
	svc, w := setupTestIssueService(t)

	_, err := svc.ChangeStatus(context.Background(), w.principal(t, "exec-north"), "issue-north",
		&dto.ChangeIssueStatusRequest{Status: model.IssueStatusClosed})
	if !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}

	resp, err := svc.ChangeStatus(context.Background(), w.principal(t, "manager-north"), "issue-north",
		&dto.ChangeIssueStatusRequest{Status: model.IssueStatusAnswered})
	if err != nil {
		t.Fatalf("经理应可修改状态: %v", err)
	}
	if resp.Status != model.IssueStatusAnswered {
		t.Errorf("期望状态 answered，实际=%s", resp.Status)
	}
}

func TestIssueService_Delete_ManagerDenied(t *testing.T) {
	svc, w := setupTestIssueService(t)

	if err := svc.Delete(context.Background(), w.principal(t, "manager-north"), "issue-north"); !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), w.principal(t, "director-north"), "issue-north"); err != nil {
		t.Errorf("总监应可删除: %v", err)
	}
}
