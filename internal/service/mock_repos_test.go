package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/model"
	"atlas/internal/notifier"
	"atlas/internal/repository"
	pkgerrors "atlas/pkg/errors"
)

var mockSeq int

func nextID(prefix string) string {
	mockSeq++
	return fmt.Sprintf("%s-%d", prefix, mockSeq)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	depts map[string][]string
	heads []model.DepartmentHead
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), depts: make(map[string][]string)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateWithDepartments(ctx context.Context, user *model.User, departmentIDs []string) error {
	if err := m.Update(ctx, user); err != nil {
		return err
	}
	return m.SetDepartments(ctx, user.UserID, departmentIDs)
}

func (m *mockUserRepo) List(_ context.Context, filter authz.RegionFilter, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filter.All || (u.RegionID != nil && *u.RegionID == filter.RegionID) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListActiveIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id, u := range m.users {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockUserRepo) ListDepartmentIDs(_ context.Context, userID string) ([]string, error) {
	return m.depts[userID], nil
}

func (m *mockUserRepo) SetDepartments(_ context.Context, userID string, departmentIDs []string) error {
	m.depts[userID] = append([]string{}, departmentIDs...)
	return nil
}

func (m *mockUserRepo) ListHeadGrants(_ context.Context, userID string) ([]model.DepartmentHead, error) {
	var result []model.DepartmentHead
	for _, h := range m.heads {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	return result, nil
}

// ── Mock RegionRepository ──

type mockRegionRepo struct {
	regions   map[string]*model.Region
	contracts map[string]int64
}

func newMockRegionRepo() *mockRegionRepo {
	return &mockRegionRepo{regions: make(map[string]*model.Region), contracts: make(map[string]int64)}
}

func (m *mockRegionRepo) Create(_ context.Context, region *model.Region) error {
	if region.RegionID == "" {
		region.RegionID = nextID("region")
	}
	m.regions[region.RegionID] = region
	return nil
}

func (m *mockRegionRepo) GetByID(_ context.Context, id string) (*model.Region, error) {
	if r, ok := m.regions[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegionRepo) List(_ context.Context, filter authz.RegionFilter) ([]model.Region, error) {
	var result []model.Region
	for _, r := range m.regions {
		if filter.Matches(r.RegionID) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRegionRepo) Update(_ context.Context, region *model.Region) error {
	cp := *region
	m.regions[region.RegionID] = &cp
	return nil
}

func (m *mockRegionRepo) Delete(_ context.Context, id string) error {
	delete(m.regions, id)
	return nil
}

func (m *mockRegionRepo) CountContracts(_ context.Context, regionID string) (int64, error) {
	return m.contracts[regionID], nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts   map[string]*model.Department
	members map[string]int64
	heads   map[string]*model.DepartmentHead
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{
		depts:   make(map[string]*model.Department),
		members: make(map[string]int64),
		heads:   make(map[string]*model.DepartmentHead),
	}
}

func headKey(departmentID, regionID string) string { return departmentID + "/" + regionID }

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = nextID("dept")
	}
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		if d.IsActive {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDeptRepo) ListAll(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.depts, id)
	return nil
}

func (m *mockDeptRepo) CountMembers(_ context.Context, departmentID string) (int64, error) {
	return m.members[departmentID], nil
}

func (m *mockDeptRepo) CountExisting(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.depts[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m *mockDeptRepo) GetHead(_ context.Context, departmentID, regionID string) (*model.DepartmentHead, error) {
	if h, ok := m.heads[headKey(departmentID, regionID)]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) UpsertHead(_ context.Context, head *model.DepartmentHead) error {
	cp := *head
	m.heads[headKey(head.DepartmentID, head.RegionID)] = &cp
	return nil
}

func (m *mockDeptRepo) DeleteHead(_ context.Context, departmentID, regionID string) error {
	delete(m.heads, headKey(departmentID, regionID))
	return nil
}

func (m *mockDeptRepo) ListHeads(_ context.Context, departmentID string) ([]model.DepartmentHead, error) {
	var result []model.DepartmentHead
	for _, h := range m.heads {
		if h.DepartmentID == departmentID {
			result = append(result, *h)
		}
	}
	return result, nil
}

// ── Mock ContractRepository ──

type mockContractRepo struct {
	contracts map[string]*model.Contract
	subCount  map[string]int64
}

func newMockContractRepo() *mockContractRepo {
	return &mockContractRepo{contracts: make(map[string]*model.Contract), subCount: make(map[string]int64)}
}

func (m *mockContractRepo) Create(_ context.Context, c *model.Contract) error {
	if c.ContractID == "" {
		c.ContractID = nextID("contract")
	}
	if c.Version == 0 {
		c.Version = 1
	}
	m.contracts[c.ContractID] = c
	return nil
}

func (m *mockContractRepo) GetByID(_ context.Context, id string) (*model.Contract, error) {
	if c, ok := m.contracts[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractRepo) List(_ context.Context, filter repository.ContractListFilter) ([]model.Contract, int64, error) {
	var result []model.Contract
	for _, c := range m.contracts {
		if !filter.Region.Matches(c.RegionID) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockContractRepo) Update(_ context.Context, c *model.Contract) error {
	stored, ok := m.contracts[c.ContractID]
	if !ok || stored.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	cp := *c
	m.contracts[c.ContractID] = &cp
	return nil
}

func (m *mockContractRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.contracts, id)
	return nil
}

func (m *mockContractRepo) CountSubdivisions(_ context.Context, contractID string) (int64, error) {
	return m.subCount[contractID], nil
}

// ── Mock SubdivisionRepository ──

type mockSubdivisionRepo struct {
	subs      map[string]*model.Subdivision
	contracts *mockContractRepo
	taskCount map[string]int64
}

func newMockSubdivisionRepo(contracts *mockContractRepo) *mockSubdivisionRepo {
	return &mockSubdivisionRepo{
		subs:      make(map[string]*model.Subdivision),
		contracts: contracts,
		taskCount: make(map[string]int64),
	}
}

func (m *mockSubdivisionRepo) Create(_ context.Context, sub *model.Subdivision) error {
	if sub.SubdivisionID == "" {
		sub.SubdivisionID = nextID("sub")
	}
	m.subs[sub.SubdivisionID] = sub
	return nil
}

// GetByID 与 gorm Preload 一致：合同缺失（已删除）时 Contract 为 nil
func (m *mockSubdivisionRepo) GetByID(_ context.Context, id string) (*model.Subdivision, error) {
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Contract = nil
	if c, ok := m.contracts.contracts[s.ContractID]; ok {
		cc := *c
		cp.Contract = &cc
	}
	return &cp, nil
}

func (m *mockSubdivisionRepo) ListByContract(_ context.Context, contractID string) ([]model.Subdivision, error) {
	var result []model.Subdivision
	for _, s := range m.subs {
		if s.ContractID == contractID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubdivisionRepo) Update(_ context.Context, sub *model.Subdivision) error {
	cp := *sub
	cp.Contract = nil
	m.subs[sub.SubdivisionID] = &cp
	return nil
}

func (m *mockSubdivisionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.subs, id)
	return nil
}

func (m *mockSubdivisionRepo) ExistsCode(_ context.Context, contractID, code, excludeID string) (bool, error) {
	for _, s := range m.subs {
		if s.ContractID == contractID && s.Code == code && s.SubdivisionID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubdivisionRepo) CountTasks(_ context.Context, subdivisionID string) (int64, error) {
	return m.taskCount[subdivisionID], nil
}

// ── Mock TaskRepository ──

type mockTaskRepo struct {
	tasks     map[string]*model.Task
	assignees map[string][]string
	depts     map[string][]string
	comments  map[string][]model.TaskComment
	subs      *mockSubdivisionRepo
	regions   *mockRegionRepo
	// afterGet 在 GetByID 返回副本后执行，用于模拟并发写入
	afterGet func(id string)
}

func newMockTaskRepo(subs *mockSubdivisionRepo, regions *mockRegionRepo) *mockTaskRepo {
	return &mockTaskRepo{
		tasks:     make(map[string]*model.Task),
		assignees: make(map[string][]string),
		depts:     make(map[string][]string),
		comments:  make(map[string][]model.TaskComment),
		subs:      subs,
		regions:   regions,
	}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task, assigneeIDs, departmentIDs []string) error {
	if task.TaskID == "" {
		task.TaskID = nextID("task")
	}
	if task.Version == 0 {
		task.Version = 1
	}
	cp := *task
	m.tasks[task.TaskID] = &cp
	m.assignees[task.TaskID] = append([]string{}, assigneeIDs...)
	m.depts[task.TaskID] = append([]string{}, departmentIDs...)
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	if t, ok := m.tasks[id]; ok {
		cp := *t
		if m.afterGet != nil {
			m.afterGet(id)
		}
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// GetScope 模拟 LEFT JOIN：链路断开的部分保持为 nil
func (m *mockTaskRepo) GetScope(_ context.Context, id string) (*repository.TaskScope, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	scope := &repository.TaskScope{
		TaskID:        id,
		AssigneeIDs:   m.assignees[id],
		DepartmentIDs: m.depts[id],
	}
	sub, ok := m.subs.subs[t.SubdivisionID]
	if !ok {
		return scope, nil
	}
	scope.SubdivisionID = model.StrPtr(sub.SubdivisionID)
	scope.SubdivisionCode = model.StrPtr(sub.Code)
	c, ok := m.subs.contracts.contracts[sub.ContractID]
	if !ok {
		return scope, nil
	}
	scope.ContractID = model.StrPtr(c.ContractID)
	scope.ContractName = model.StrPtr(c.Name)
	scope.ContractManagerID = c.ManagerID
	scope.RegionID = model.StrPtr(c.RegionID)
	if r, ok := m.regions.regions[c.RegionID]; ok {
		scope.RegionManagerID = r.ManagerID
	}
	return scope, nil
}

func (m *mockTaskRepo) List(_ context.Context, filter repository.TaskListFilter) ([]model.Task, int64, error) {
	var result []model.Task
	for id, t := range m.tasks {
		scope, _ := m.GetScope(context.Background(), id)
		if scope.RegionID == nil || !filter.Region.Matches(*scope.RegionID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && !contains(m.assignees[id], filter.AssigneeID) {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *model.Task, resetReminders bool) error {
	stored, ok := m.tasks[task.TaskID]
	if !ok || stored.Version != task.Version {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version++
	cp := *task
	if !resetReminders {
		cp.ReminderSentAt = stored.ReminderSentAt
		cp.OverdueNotifiedAt = stored.OverdueNotifiedAt
	}
	m.tasks[task.TaskID] = &cp
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) ListAssigneeIDs(_ context.Context, taskID string) ([]string, error) {
	return m.assignees[taskID], nil
}

func (m *mockTaskRepo) ReplaceAssignees(_ context.Context, taskID string, userIDs []string) error {
	m.assignees[taskID] = append([]string{}, userIDs...)
	return nil
}

func (m *mockTaskRepo) ListDepartmentIDs(_ context.Context, taskID string) ([]string, error) {
	return m.depts[taskID], nil
}

func (m *mockTaskRepo) ReplaceDepartments(_ context.Context, taskID string, departmentIDs []string) error {
	m.depts[taskID] = append([]string{}, departmentIDs...)
	return nil
}

func (m *mockTaskRepo) AddComment(_ context.Context, comment *model.TaskComment) error {
	if comment.CommentID == "" {
		comment.CommentID = nextID("comment")
	}
	m.comments[comment.TaskID] = append(m.comments[comment.TaskID], *comment)
	return nil
}

func (m *mockTaskRepo) ListComments(_ context.Context, taskID string) ([]model.TaskComment, error) {
	return m.comments[taskID], nil
}

func (m *mockTaskRepo) ListDueForReminder(_ context.Context, now, until time.Time) ([]model.Task, error) {
	var result []model.Task
	for _, t := range m.tasks {
		if t.Deadline == nil || !t.IsOpen() || t.ReminderSentAt != nil {
			continue
		}
		if t.Deadline.After(now) && !t.Deadline.After(until) {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) MarkReminderSent(_ context.Context, taskID string, at time.Time) (bool, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.ReminderSentAt != nil {
		return false, nil
	}
	t.ReminderSentAt = &at
	return true, nil
}

func (m *mockTaskRepo) ListOverdue(_ context.Context, now time.Time) ([]model.Task, error) {
	var result []model.Task
	for _, t := range m.tasks {
		if t.Deadline == nil || !t.IsOpen() || t.OverdueNotifiedAt != nil {
			continue
		}
		if !t.Deadline.After(now) {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) MarkOverdueNotified(_ context.Context, taskID string, at time.Time) (bool, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.OverdueNotifiedAt != nil {
		return false, nil
	}
	t.OverdueNotifiedAt = &at
	return true, nil
}

func (m *mockTaskRepo) ListAssignedWithDeadline(_ context.Context, userID string) ([]model.Task, error) {
	var result []model.Task
	for id, t := range m.tasks {
		if t.Deadline != nil && contains(m.assignees[id], userID) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.Before(*result[j].Deadline) })
	return result, nil
}

// ── Mock IssueRepository ──

type mockIssueRepo struct {
	issues   map[string]*model.Issue
	comments map[string][]model.IssueComment
}

func newMockIssueRepo() *mockIssueRepo {
	return &mockIssueRepo{issues: make(map[string]*model.Issue), comments: make(map[string][]model.IssueComment)}
}

func (m *mockIssueRepo) Create(_ context.Context, issue *model.Issue) error {
	if issue.IssueID == "" {
		issue.IssueID = nextID("issue")
	}
	m.issues[issue.IssueID] = issue
	return nil
}

func (m *mockIssueRepo) GetByID(_ context.Context, id string) (*model.Issue, error) {
	if i, ok := m.issues[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIssueRepo) List(_ context.Context, filter repository.IssueListFilter) ([]model.Issue, int64, error) {
	var result []model.Issue
	for _, i := range m.issues {
		if i.RegionID == nil {
			if !filter.Region.All || !filter.IncludeGlobal {
				continue
			}
		} else if !filter.Region.Matches(*i.RegionID) {
			continue
		}
		result = append(result, *i)
	}
	return result, int64(len(result)), nil
}

func (m *mockIssueRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	i, ok := m.issues[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Status = status
	return nil
}

func (m *mockIssueRepo) Delete(_ context.Context, id string) error {
	delete(m.issues, id)
	delete(m.comments, id)
	return nil
}

func (m *mockIssueRepo) AddComment(_ context.Context, comment *model.IssueComment) error {
	if comment.CommentID == "" {
		comment.CommentID = nextID("icomment")
	}
	m.comments[comment.IssueID] = append(m.comments[comment.IssueID], *comment)
	return nil
}

func (m *mockIssueRepo) ListComments(_ context.Context, issueID string) ([]model.IssueComment, error) {
	return m.comments[issueID], nil
}

func (m *mockIssueRepo) ListParticipantIDs(_ context.Context, issueID string) ([]string, error) {
	var ids []string
	if i, ok := m.issues[issueID]; ok && i.CreatedBy != nil {
		ids = append(ids, *i.CreatedBy)
	}
	for _, c := range m.comments[issueID] {
		if !contains(ids, c.UserID) {
			ids = append(ids, c.UserID)
		}
	}
	return ids, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	rows          map[string]*model.Notification
	countCalls    int
	markReadCalls int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{rows: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = nextID("notif")
	}
	m.rows[n.NotificationID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.rows[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListRecent(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.rows {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockNotificationRepo) ListUnread(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			result = append(result, *n)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.countCalls++
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	m.markReadCalls++
	n, ok := m.rows[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	var count int64
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkDelivered(_ context.Context, id string, at time.Time) error {
	if n, ok := m.rows[id]; ok {
		n.DeliveredAt = &at
	}
	return nil
}

// ── Mock 分发与缓存 ──

type dispatchCall struct {
	Event      notifier.Event
	Recipients []string
}

type recordingDispatcher struct {
	calls []dispatchCall
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ev notifier.Event, recipients []string) notifier.Result {
	d.calls = append(d.calls, dispatchCall{Event: ev, Recipients: append([]string{}, recipients...)})
	res := notifier.Result{}
	for _, id := range recipients {
		res.Persisted = append(res.Persisted, &model.Notification{UserID: id})
	}
	return res
}

func (d *recordingDispatcher) byType(t notifier.EventType) []dispatchCall {
	var out []dispatchCall
	for _, c := range d.calls {
		if c.Event.Type == t {
			out = append(out, c)
		}
	}
	return out
}

type mockUnreadCache struct {
	counts      map[string]int64
	invalidated []string
}

func newMockUnreadCache() *mockUnreadCache {
	return &mockUnreadCache{counts: make(map[string]int64)}
}

func (c *mockUnreadCache) GetUnreadCount(_ context.Context, userID string) (int64, bool, error) {
	n, ok := c.counts[userID]
	return n, ok, nil
}

func (c *mockUnreadCache) SetUnreadCount(_ context.Context, userID string, count int64, _ time.Duration) error {
	c.counts[userID] = count
	return nil
}

func (c *mockUnreadCache) InvalidateUnreadCount(_ context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		delete(c.counts, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type mockTokenStore struct {
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (s *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	s.revoked[jti] = ttl
	return nil
}

func (s *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := s.revoked[jti]
	return ok, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
