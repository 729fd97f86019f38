package service

import (
	"context"
	"errors"
	"testing"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	pkgerrors "atlas/pkg/errors"
)

// ── 合同测试 ──

func TestContractService_Create_ManagerInRegion(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)

	resp, err := svc.Create(context.Background(), w.principal(t, "manager-north"), &dto.CreateContractRequest{
		RegionID: regionNorth,
		Name:     "北区道路",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.ContractStatusPlanning || resp.Version != 1 {
		t.Errorf("期望默认状态 planning、版本 1，实际=%s/%d", resp.Status, resp.Version)
	}

	_, err = svc.Create(context.Background(), w.principal(t, "manager-north"), &dto.CreateContractRequest{
		RegionID: regionSouth,
		Name:     "越区合同",
	})
	if !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}
}

func TestContractService_Update_OptimisticLock(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)
	p := w.principal(t, "director-north")
	name := "改名"

	resp, err := svc.Update(context.Background(), p, "contract-1", &dto.UpdateContractRequest{Name: &name, Version: 1})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("期望版本=2，实际=%d", resp.Version)
	}

	_, err = svc.Update(context.Background(), p, "contract-1", &dto.UpdateContractRequest{Name: &name, Version: 1})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestContractService_Update_ManagerCannotAssignSelf(t *testing.T) {
	w := newTestWorld(t)
	contracts := NewContractService(w.base)
	tasks := NewTaskService(w.base, w.dispatcher)
	w.addTask(t, "task-design", nil, []string{deptDesign})
	p := w.principal(t, "manager-north")
	title := "改"

	if _, err := tasks.Update(context.Background(), p, "task-design",
		&dto.UpdateTaskRequest{Title: &title, Version: 1}); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("部门不重叠的经理应被拒绝，实际: %v", err)
	}

	_, err := contracts.Update(context.Background(), p, "contract-1",
		&dto.UpdateContractRequest{ManagerID: model.StrPtr("manager-north"), Version: 1})
	if !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("经理不能指派合同经理，实际: %v", err)
	}
	if got := deref(w.contracts.contracts["contract-1"].ManagerID); got != "manager-nodept" {
		t.Errorf("合同经理不应被修改，实际=%s", got)
	}

	if _, err := tasks.Update(context.Background(), p, "task-design",
		&dto.UpdateTaskRequest{Title: &title, Version: 1}); !errors.Is(err, authz.ErrDenied) {
		t.Errorf("仍应按部门规则拒绝，实际: %v", err)
	}
}

func TestContractService_Create_ManagerIDRequiresDirector(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)

	_, err := svc.Create(context.Background(), w.principal(t, "manager-north"), &dto.CreateContractRequest{
		RegionID:  regionNorth,
		Name:      "自任经理",
		ManagerID: model.StrPtr("manager-north"),
	})
	if !errors.Is(err, authz.ErrDenied) {
		t.Errorf("期望 ErrDenied，实际: %v", err)
	}
}

func TestContractService_ManagerValidation(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)
	w.addUser(t, "manager-retired", "manager", model.StrPtr(regionNorth)).IsActive = false
	director := w.principal(t, "director-north")

	tests := []struct {
		name      string
		managerID string
		wantErr   error
	}{
		{"OtherRegion", "director-south", ErrContractManagerInvalid},
		{"ExecutantOtherRegion", "exec-south", ErrContractManagerInvalid},
		{"ExecutantSameRegion", "exec-north", ErrContractManagerInvalid},
		{"Inactive", "manager-retired", ErrContractManagerInvalid},
		{"Missing", "ghost", ErrUserNotFound},
		{"ManagerSameRegion", "manager-north", nil},
		{"UnrestrictedAdmin", "admin", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), director, &dto.CreateContractRequest{
				RegionID:  regionNorth,
				Name:      "合同-" + tt.name,
				ManagerID: model.StrPtr(tt.managerID),
			})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("期望成功，实际: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}

	// 更新时同样校验
	_, err := svc.Update(context.Background(), director, "contract-1",
		&dto.UpdateContractRequest{ManagerID: model.StrPtr("exec-south"), Version: 1})
	if !errors.Is(err, ErrContractManagerInvalid) {
		t.Errorf("期望 ErrContractManagerInvalid，实际: %v", err)
	}
}

func TestContractService_List_AuditorReadOnly(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)

	contracts, total, err := svc.List(context.Background(), w.principal(t, "auditor-north"), &dto.ContractListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Fatalf("期望 1 个合同，实际=%d", total)
	}
	perms := contracts[0].Permissions
	if !perms.CanView || perms.CanEdit || perms.CanDelete {
		t.Errorf("审计员只读，实际=%+v", perms)
	}
}

func TestContractService_Delete_HasSubdivisions(t *testing.T) {
	w := newTestWorld(t)
	svc := NewContractService(w.base)
	w.contracts.subCount["contract-1"] = 1

	err := svc.Delete(context.Background(), w.principal(t, "director-north"), "contract-1")
	if !errors.Is(err, ErrContractHasSubdivisions) {
		t.Errorf("期望 ErrContractHasSubdivisions，实际: %v", err)
	}
}

// ── 子项测试 ──

func TestSubdivisionService_Create_CodeUnique(t *testing.T) {
	w := newTestWorld(t)
	svc := NewSubdivisionService(w.base)
	p := w.principal(t, "manager-north")

	if _, err := svc.Create(context.Background(), p, "contract-1", &dto.CreateSubdivisionRequest{Code: "A-01", Name: "重复"}); !errors.Is(err, ErrSubdivisionCodeExists) {
		t.Errorf("期望 ErrSubdivisionCodeExists，实际: %v", err)
	}
	resp, err := svc.Create(context.Background(), p, "contract-1", &dto.CreateSubdivisionRequest{Code: "A-02", Name: "二标段"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ContractID != "contract-1" || !resp.Permissions.CanEdit {
		t.Errorf("子项信息不正确: %+v", resp)
	}
}

func TestSubdivisionService_Get_OrphanIntegrityError(t *testing.T) {
	w := newTestWorld(t)
	svc := NewSubdivisionService(w.base)
	w.subs.subs["sub-orphan"] = &model.Subdivision{SubdivisionID: "sub-orphan", ContractID: "contract-gone", Code: "X"}

	_, err := svc.Get(context.Background(), w.principal(t, "director-north"), "sub-orphan")
	if !errors.Is(err, authz.ErrDataIntegrity) {
		t.Errorf("期望 ErrDataIntegrity，实际: %v", err)
	}
	// 管理员可查看并修复孤儿数据
	if _, err := svc.Get(context.Background(), w.principal(t, "admin"), "sub-orphan"); err != nil {
		t.Errorf("管理员应可访问: %v", err)
	}
}

func TestSubdivisionService_Delete_HasTasks(t *testing.T) {
	w := newTestWorld(t)
	svc := NewSubdivisionService(w.base)
	w.subs.taskCount["sub-1"] = 2

	err := svc.Delete(context.Background(), w.principal(t, "director-north"), "sub-1")
	if !errors.Is(err, ErrSubdivisionHasTasks) {
		t.Errorf("期望 ErrSubdivisionHasTasks，实际: %v", err)
	}
}
