package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"atlas/internal/authz"
	"atlas/internal/model"
	"atlas/internal/repository"
)

// ── 测试辅助 ──

const (
	regionNorth = "region-north"
	regionSouth = "region-south"
	deptSurvey  = "dept-survey"
	deptDesign  = "dept-design"
	testPass    = "Passw0rd!"
)

// testWorld 内存中的一套区域 → 合同 → 子项 → 任务数据
type testWorld struct {
	repo       *repository.Repository
	users      *mockUserRepo
	regions    *mockRegionRepo
	depts      *mockDeptRepo
	contracts  *mockContractRepo
	subs       *mockSubdivisionRepo
	tasks      *mockTaskRepo
	issues     *mockIssueRepo
	notifs     *mockNotificationRepo
	dispatcher *recordingDispatcher
	base       base
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	w := &testWorld{
		users:      newMockUserRepo(),
		regions:    newMockRegionRepo(),
		depts:      newMockDeptRepo(),
		contracts:  newMockContractRepo(),
		issues:     newMockIssueRepo(),
		notifs:     newMockNotificationRepo(),
		dispatcher: &recordingDispatcher{},
	}
	w.subs = newMockSubdivisionRepo(w.contracts)
	w.tasks = newMockTaskRepo(w.subs, w.regions)
	w.repo = &repository.Repository{
		User:         w.users,
		Region:       w.regions,
		Department:   w.depts,
		Contract:     w.contracts,
		Subdivision:  w.subs,
		Task:         w.tasks,
		Issue:        w.issues,
		Notification: w.notifs,
	}
	logger := zap.NewNop()
	w.base = base{repo: w.repo, authz: authz.NewResolver(logger), logger: logger}

	w.regions.regions[regionNorth] = &model.Region{RegionID: regionNorth, Name: "北区", ManagerID: model.StrPtr("director-north")}
	w.regions.regions[regionSouth] = &model.Region{RegionID: regionSouth, Name: "南区"}
	w.depts.depts[deptSurvey] = &model.Department{DepartmentID: deptSurvey, Name: "测绘部", IsActive: true}
	w.depts.depts[deptDesign] = &model.Department{DepartmentID: deptDesign, Name: "设计部", IsActive: true}

	w.addUser(t, "admin", "admin", nil)
	w.addUser(t, "director-north", "director", model.StrPtr(regionNorth))
	w.addUser(t, "director-south", "director", model.StrPtr(regionSouth))
	w.addUser(t, "manager-north", "manager", model.StrPtr(regionNorth), deptSurvey)
	w.addUser(t, "manager-nodept", "manager", model.StrPtr(regionNorth))
	w.addUser(t, "exec-north", "executant", model.StrPtr(regionNorth))
	w.addUser(t, "exec-north-2", "executant", model.StrPtr(regionNorth))
	w.addUser(t, "exec-south", "executant", model.StrPtr(regionSouth))
	w.addUser(t, "auditor-north", "auditor", model.StrPtr(regionNorth))

	w.contracts.contracts["contract-1"] = &model.Contract{
		ContractID: "contract-1", RegionID: regionNorth, Name: "北区管网改造",
		ManagerID: model.StrPtr("manager-nodept"), Status: model.ContractStatusActive,
		VersionedModel: model.VersionedModel{Version: 1},
	}
	w.subs.subs["sub-1"] = &model.Subdivision{SubdivisionID: "sub-1", ContractID: "contract-1", Code: "A-01", Name: "一标段"}
	return w
}

func (w *testWorld) addUser(t *testing.T, id, role string, regionID *string, depts ...string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPass), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := &model.User{
		UserID:       id,
		Name:         id,
		Email:        id + "@atlas.test",
		PasswordHash: string(hash),
		Role:         role,
		RegionID:     regionID,
		IsActive:     true,
	}
	w.users.users[id] = u
	if len(depts) > 0 {
		w.users.depts[id] = depts
	}
	return u
}

// principal 按当前存储状态构造主体
func (w *testWorld) principal(t *testing.T, id string) authz.Principal {
	t.Helper()
	u, ok := w.users.users[id]
	if !ok {
		t.Fatalf("未知用户 %s", id)
	}
	var grants []authz.HeadGrant
	for _, h := range w.depts.heads {
		if h.UserID == id {
			grants = append(grants, authz.HeadGrant{DepartmentID: h.DepartmentID, RegionID: h.RegionID})
		}
	}
	return authz.NewPrincipal(u.UserID, roleOf(u), u.RegionID, u.IsActive, w.users.depts[id], grants)
}

// addTask 直接写入一条任务
func (w *testWorld) addTask(t *testing.T, id string, assignees, depts []string) *model.Task {
	t.Helper()
	task := &model.Task{
		TaskID:         id,
		SubdivisionID:  "sub-1",
		Title:          "任务 " + id,
		Status:         model.TaskStatusNew,
		Priority:       model.TaskPriorityMedium,
		VersionedModel: model.VersionedModel{Version: 1},
	}
	task.CreatedBy = model.StrPtr("director-north")
	if err := w.tasks.Create(context.Background(), task, assignees, depts); err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	return task
}
