package authz

// EntityKind 受控实体类型
type EntityKind string

const (
	KindRegion         EntityKind = "region"
	KindDepartment     EntityKind = "department"
	KindDepartmentHead EntityKind = "department_head"
	KindContract       EntityKind = "contract"
	KindSubdivision    EntityKind = "subdivision"
	KindTask           EntityKind = "task"
	KindIssue          EntityKind = "issue"
	KindUser           EntityKind = "user"
	KindNotification   EntityKind = "notification"
)

// Operation 操作类型
type Operation string

const (
	OpView         Operation = "view"
	OpCreate       Operation = "create"
	OpEdit         Operation = "edit"
	OpDelete       Operation = "delete"
	OpComment      Operation = "comment"
	OpChangeStatus Operation = "change_status"
)

// EntityRef 授权判定所需的实体快照
//
// RegionID 是沿归属链解析出的区域；Unscoped 表示实体按设计不属于任何区域
// （部门、全局问题、不限区域的用户）。二者都为空说明归属链断裂。
// 创建操作时 ID 为空，其余字段描述目标上下文。
type EntityRef struct {
	Kind     EntityKind
	ID       string
	RegionID string
	Unscoped bool

	// 任务
	AssigneeIDs       []string
	DepartmentIDs     []string
	ContractManagerID string

	// 用户
	TargetRole Role

	// 通知
	OwnerID string
}

func regionOf(regionID *string) (string, bool) {
	if regionID == nil || *regionID == "" {
		return "", true
	}
	return *regionID, false
}

// RegionRef 区域实体
func RegionRef(regionID string) EntityRef {
	return EntityRef{Kind: KindRegion, ID: regionID, RegionID: regionID}
}

// DepartmentRef 部门实体（跨区域）
func DepartmentRef(departmentID string) EntityRef {
	return EntityRef{Kind: KindDepartment, ID: departmentID, Unscoped: true}
}

// DepartmentHeadRef 部门负责人授权 (department, region)
func DepartmentHeadRef(departmentID, regionID string) EntityRef {
	return EntityRef{Kind: KindDepartmentHead, ID: departmentID, RegionID: regionID}
}

// ContractRef 合同实体
func ContractRef(contractID, regionID string, managerID *string) EntityRef {
	ref := EntityRef{Kind: KindContract, ID: contractID, RegionID: regionID}
	if managerID != nil {
		ref.ContractManagerID = *managerID
	}
	return ref
}

// SubdivisionRef 子项实体，regionID 为所属合同的区域
func SubdivisionRef(subdivisionID, regionID string) EntityRef {
	return EntityRef{Kind: KindSubdivision, ID: subdivisionID, RegionID: regionID}
}

// TaskRef 任务实体
func TaskRef(taskID, regionID string, assigneeIDs, departmentIDs []string, contractManagerID *string) EntityRef {
	ref := EntityRef{
		Kind:          KindTask,
		ID:            taskID,
		RegionID:      regionID,
		AssigneeIDs:   assigneeIDs,
		DepartmentIDs: departmentIDs,
	}
	if contractManagerID != nil {
		ref.ContractManagerID = *contractManagerID
	}
	return ref
}

// IssueRef 问题实体，regionID 为 nil 表示全局问题
func IssueRef(issueID string, regionID *string) EntityRef {
	id, global := regionOf(regionID)
	return EntityRef{Kind: KindIssue, ID: issueID, RegionID: id, Unscoped: global}
}

// UserRef 用户实体，regionID 为 nil 表示不限区域的账号
func UserRef(userID string, regionID *string, role Role) EntityRef {
	id, unscoped := regionOf(regionID)
	return EntityRef{Kind: KindUser, ID: userID, RegionID: id, Unscoped: unscoped, TargetRole: role}
}

// NotificationRef 通知实体，仅接收人可访问
func NotificationRef(notificationID, ownerID string) EntityRef {
	return EntityRef{Kind: KindNotification, ID: notificationID, OwnerID: ownerID, Unscoped: true}
}

func (r EntityRef) isAssigned(userID string) bool {
	for _, id := range r.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
