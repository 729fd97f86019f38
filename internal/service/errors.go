package service

import "errors"

// ── 认证 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserInactive       = errors.New("账号已停用")
	ErrInvalidToken       = errors.New("Token 无效或已过期")
)

// ── 用户 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已被使用")
	ErrInvalidRole        = errors.New("无效的角色")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色或区域")
	ErrUserSelfDeactivate = errors.New("不能停用自己")
)

// ── 区域 ──

var (
	ErrRegionNotFound     = errors.New("区域不存在")
	ErrRegionHasContracts = errors.New("区域下存在合同，无法删除")
	ErrRegionManagerRole  = errors.New("区域负责人必须是该区域或不限区域的总监及以上角色")
)

// ── 部门 ──

var (
	ErrDepartmentNotFound   = errors.New("部门不存在")
	ErrDepartmentNameExists = errors.New("部门名称已存在")
	ErrDepartmentHasMembers = errors.New("部门下存在成员，无法删除")
	ErrDepartmentInvalid    = errors.New("部门列表包含不存在的部门")
	ErrHeadRankTooLow       = errors.New("部门负责人必须是经理及以上角色")
	ErrHeadRegionMismatch   = errors.New("部门负责人必须属于该区域")
	ErrHeadNotFound         = errors.New("该区域尚未指派部门负责人")
)

// ── 合同与子项 ──

var (
	ErrContractNotFound        = errors.New("合同不存在")
	ErrContractHasSubdivisions = errors.New("合同下存在子项，无法删除")
	ErrContractManagerInvalid  = errors.New("合同经理必须是该区域或不限区域的在职经理及以上角色")
	ErrSubdivisionNotFound     = errors.New("子项不存在")
	ErrSubdivisionCodeExists   = errors.New("子项编号在合同内已存在")
	ErrSubdivisionHasTasks     = errors.New("子项下存在任务，无法删除")
)

// ── 任务与问题 ──

var (
	ErrTaskNotFound    = errors.New("任务不存在")
	ErrAssigneeInvalid = errors.New("执行人必须是任务所在区域的在职用户")
	ErrIssueNotFound   = errors.New("问题不存在")
)

// ── 通知 ──

var ErrNotificationNotFound = errors.New("通知不存在")
