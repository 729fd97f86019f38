package service

import (
	"context"
	"errors"
	"testing"

	"atlas/internal/authz"
	"atlas/internal/dto"
)

func setupTestDepartmentService(t *testing.T) (DepartmentService, *testWorld) {
	w := newTestWorld(t)
	return NewDepartmentService(w.base), w
}

// ── Create 测试 ──

func TestDepartmentService_Create_Success(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	result, err := svc.Create(context.Background(), w.principal(t, "admin"), &dto.CreateDepartmentRequest{Name: "造价部"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "造价部" {
		t.Errorf("期望Name=造价部，实际=%s", result.Name)
	}
	if result.Color != "#6c757d" {
		t.Errorf("期望默认颜色，实际=%s", result.Color)
	}
}

func TestDepartmentService_Create_DirectorDenied(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.Create(context.Background(), w.principal(t, "director-north"), &dto.CreateDepartmentRequest{Name: "造价部"})
	if !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}
}

func TestDepartmentService_Create_NameExists(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.Create(context.Background(), w.principal(t, "admin"), &dto.CreateDepartmentRequest{Name: "测绘部"})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际: %v", err)
	}
}

// ── 查询测试 ──

func TestDepartmentService_GetByID_NotFound(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.GetByID(context.Background(), w.principal(t, "exec-north"), "missing")
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

func TestDepartmentService_List_AnyRole(t *testing.T) {
	svc, w := setupTestDepartmentService(t)
	w.depts.depts[deptDesign].IsActive = false

	depts, err := svc.List(context.Background(), w.principal(t, "auditor-north"), &dto.DepartmentListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(depts) != 1 {
		t.Errorf("期望 1 个在用部门，实际=%d", len(depts))
	}

	all, err := svc.List(context.Background(), w.principal(t, "auditor-north"), &dto.DepartmentListRequest{IncludeInactive: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("期望 2 个部门，实际=%d", len(all))
	}
}

// ── Delete 测试 ──

func TestDepartmentService_Delete_HasMembers(t *testing.T) {
	svc, w := setupTestDepartmentService(t)
	w.depts.members[deptSurvey] = 3

	err := svc.Delete(context.Background(), w.principal(t, "admin"), deptSurvey)
	if !errors.Is(err, ErrDepartmentHasMembers) {
		t.Errorf("期望 ErrDepartmentHasMembers，实际: %v", err)
	}
}

// ── 部门负责人测试 ──

func TestDepartmentService_AssignHead_DirectorOwnRegion(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	resp, err := svc.AssignHead(context.Background(), w.principal(t, "director-north"), deptDesign,
		&dto.AssignHeadRequest{RegionID: regionNorth, UserID: "manager-nodept"})
	if err != nil {
		t.Fatalf("AssignHead 应成功: %v", err)
	}
	if resp.UserID != "manager-nodept" || resp.UserName != "manager-nodept" {
		t.Errorf("负责人信息不正确: %+v", resp)
	}
	if _, ok := w.depts.heads[headKey(deptDesign, regionNorth)]; !ok {
		t.Errorf("负责人应已保存")
	}
}

func TestDepartmentService_AssignHead_OtherRegionDenied(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.AssignHead(context.Background(), w.principal(t, "director-north"), deptDesign,
		&dto.AssignHeadRequest{RegionID: regionSouth, UserID: "director-south"})
	if !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}
}

func TestDepartmentService_AssignHead_RankTooLow(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.AssignHead(context.Background(), w.principal(t, "admin"), deptDesign,
		&dto.AssignHeadRequest{RegionID: regionNorth, UserID: "exec-north"})
	if !errors.Is(err, ErrHeadRankTooLow) {
		t.Errorf("期望 ErrHeadRankTooLow，实际: %v", err)
	}
}

func TestDepartmentService_AssignHead_RegionMismatch(t *testing.T) {
	svc, w := setupTestDepartmentService(t)

	_, err := svc.AssignHead(context.Background(), w.principal(t, "admin"), deptDesign,
		&dto.AssignHeadRequest{RegionID: regionSouth, UserID: "manager-north"})
	if !errors.Is(err, ErrHeadRegionMismatch) {
		t.Errorf("期望 ErrHeadRegionMismatch，实际: %v", err)
	}
}

func TestDepartmentService_RemoveHead(t *testing.T) {
	svc, w := setupTestDepartmentService(t)
	ctx := context.Background()
	admin := w.principal(t, "admin")

	if err := svc.RemoveHead(ctx, admin, deptDesign, regionNorth); !errors.Is(err, ErrHeadNotFound) {
		t.Errorf("期望 ErrHeadNotFound，实际: %v", err)
	}
	if _, err := svc.AssignHead(ctx, admin, deptDesign, &dto.AssignHeadRequest{RegionID: regionNorth, UserID: "manager-north"}); err != nil {
		t.Fatalf("AssignHead 应成功: %v", err)
	}
	if err := svc.RemoveHead(ctx, admin, deptDesign, regionNorth); err != nil {
		t.Errorf("RemoveHead 应成功: %v", err)
	}
	heads, err := svc.ListHeads(ctx, admin, deptDesign)
	if err != nil {
		t.Fatalf("ListHeads 应成功: %v", err)
	}
	if len(heads) != 0 {
		t.Errorf("期望无负责人，实际=%d", len(heads))
	}
}
