package authz

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Resolver 作用域解析器
//
// 所有授权判定的唯一入口：给定主体、操作与实体，返回允许或拒绝。
// 判定是纯函数，不访问数据库；实体的归属链由调用方在构造 EntityRef 时解析。
type Resolver struct {
	logger *zap.Logger
}

// NewResolver 创建作用域解析器
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Authorize 判定主体能否对实体执行操作
// 拒绝时返回 ErrDenied；归属链断裂时返回 *DataIntegrityError，二者都应视为拒绝
func (r *Resolver) Authorize(p Principal, op Operation, ref EntityRef) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("授权判定异常，按拒绝处理",
				zap.String("principal", p.ID()),
				zap.String("kind", string(ref.Kind)),
				zap.String("entity_id", ref.ID),
				zap.Any("panic", rec),
			)
			err = ErrDenied
		}
	}()

	if p.ID() == "" || !p.IsActive() || !p.Role().Valid() {
		return ErrDenied
	}

	// 管理员不受区域与归属链约束，可以处理孤立数据
	if p.Level() >= LevelAdmin {
		return nil
	}

	if ierr := checkOwnership(ref); ierr != nil {
		r.logger.Error("实体归属链断裂，拒绝访问",
			zap.String("principal", p.ID()),
			zap.String("kind", string(ierr.Kind)),
			zap.String("entity_id", ierr.ID),
			zap.String("reason", ierr.Reason),
		)
		return ierr
	}

	if !decide(p, op, ref) {
		r.logger.Debug("授权拒绝",
			zap.String("principal", p.ID()),
			zap.String("role", p.Role().String()),
			zap.String("op", string(op)),
			zap.String("kind", string(ref.Kind)),
			zap.String("entity_id", ref.ID),
		)
		return ErrDenied
	}
	return nil
}

func (r *Resolver) allowed(p Principal, op Operation, ref EntityRef) bool {
	return r.Authorize(p, op, ref) == nil
}

func (r *Resolver) CanView(p Principal, ref EntityRef) bool   { return r.allowed(p, OpView, ref) }
func (r *Resolver) CanCreate(p Principal, ref EntityRef) bool { return r.allowed(p, OpCreate, ref) }
func (r *Resolver) CanEdit(p Principal, ref EntityRef) bool   { return r.allowed(p, OpEdit, ref) }
func (r *Resolver) CanDelete(p Principal, ref EntityRef) bool { return r.allowed(p, OpDelete, ref) }

func (r *Resolver) CanComment(p Principal, ref EntityRef) bool {
	return r.allowed(p, OpComment, ref)
}

func (r *Resolver) CanChangeStatus(p Principal, ref EntityRef) bool {
	return r.allowed(p, OpChangeStatus, ref)
}

// Permissions 一次性解析实体的完整权限集合
func (r *Resolver) Permissions(p Principal, ref EntityRef) PermissionSet {
	return PermissionSet{
		CanView:         r.CanView(p, ref),
		CanEdit:         r.CanEdit(p, ref),
		CanDelete:       r.CanDelete(p, ref),
		CanComment:      r.CanComment(p, ref),
		CanChangeStatus: r.CanChangeStatus(p, ref),
	}
}

// AllowedRegionFilter 列表查询的区域过滤条件
// 管理员与未绑定区域的主体可见全部区域，其余只见本区域
func (r *Resolver) AllowedRegionFilter(p Principal) RegionFilter {
	if p.Level() >= LevelAdmin || p.Unrestricted() {
		return RegionFilter{All: true}
	}
	return RegionFilter{RegionID: p.regionID}
}

// Describe 将授权错误转换为日志友好的描述
func Describe(err error) string {
	var ierr *DataIntegrityError
	switch {
	case err == nil:
		return "allowed"
	case errors.As(err, &ierr):
		return fmt.Sprintf("integrity: %s", ierr.Reason)
	default:
		return "denied"
	}
}

// ────────── 归属链检查 ──────────

func checkOwnership(ref EntityRef) *DataIntegrityError {
	switch ref.Kind {
	case KindDepartment, KindNotification:
		return nil
	case KindRegion:
		if ref.ID == "" && ref.RegionID == "" {
			// 创建区域时尚无 ID
			return nil
		}
		if ref.RegionID == "" {
			return NewDataIntegrityError(ref.Kind, ref.ID, "区域 ID 为空")
		}
		return nil
	case KindIssue, KindUser:
		if ref.RegionID == "" && !ref.Unscoped {
			return NewDataIntegrityError(ref.Kind, ref.ID, "区域缺失")
		}
		return nil
	case KindContract, KindSubdivision, KindTask, KindDepartmentHead:
		if ref.RegionID == "" {
			return NewDataIntegrityError(ref.Kind, ref.ID, "无法沿归属链解析区域")
		}
		return nil
	default:
		return NewDataIntegrityError(ref.Kind, ref.ID, "未知实体类型")
	}
}

// ────────── 判定规则 ──────────

func decide(p Principal, op Operation, ref EntityRef) bool {
	// 通知只属于接收人
	if ref.Kind == KindNotification {
		return (op == OpView || op == OpEdit) && ref.OwnerID != "" && ref.OwnerID == p.ID()
	}

	lvl := p.Level()
	switch {
	case lvl >= LevelDirector:
		return directorRule(p, op, ref)
	case lvl >= LevelManager:
		return managerRule(p, op, ref)
	case lvl >= LevelExecutant:
		return executantRule(p, op, ref)
	case lvl >= LevelAuditor:
		return auditorRule(p, op, ref)
	default:
		return false
	}
}

// inScope 实体区域是否在主体范围内；不属于任何区域的实体只对不限区域的主体开放
func inScope(p Principal, ref EntityRef) bool {
	if ref.Unscoped && ref.RegionID == "" {
		return p.Unrestricted()
	}
	return p.coversRegion(ref.RegionID)
}

func isGlobalIssue(ref EntityRef) bool {
	return ref.Kind == KindIssue && ref.RegionID == ""
}

// manageableUser 只能管理本区域内等级严格更低的用户
func manageableUser(p Principal, ref EntityRef) bool {
	return inScope(p, ref) && p.Role().Outranks(ref.TargetRole)
}

func viewUser(p Principal, ref EntityRef) bool {
	return (ref.ID != "" && ref.ID == p.ID()) || inScope(p, ref)
}

func directorRule(p Principal, op Operation, ref EntityRef) bool {
	switch ref.Kind {
	case KindRegion:
		return (op == OpView || op == OpEdit) && inScope(p, ref)
	case KindDepartment:
		return op == OpView
	case KindDepartmentHead, KindContract, KindSubdivision, KindTask:
		return inScope(p, ref)
	case KindIssue:
		return !isGlobalIssue(ref) && inScope(p, ref)
	case KindUser:
		if op == OpView {
			return viewUser(p, ref)
		}
		return manageableUser(p, ref)
	default:
		return false
	}
}

func managerRule(p Principal, op Operation, ref EntityRef) bool {
	switch ref.Kind {
	case KindRegion, KindDepartmentHead:
		return op == OpView && inScope(p, ref)
	case KindDepartment:
		return op == OpView
	case KindContract, KindSubdivision:
		return inScope(p, ref)
	case KindTask:
		if !inScope(p, ref) {
			return false
		}
		switch op {
		case OpView, OpDelete:
			return true
		default:
			return taskDepartmentAccess(p, ref)
		}
	case KindIssue:
		if isGlobalIssue(ref) || !inScope(p, ref) {
			return false
		}
		return op != OpDelete
	case KindUser:
		if op == OpView {
			return viewUser(p, ref)
		}
		return manageableUser(p, ref)
	default:
		return false
	}
}

// taskDepartmentAccess 经理对任务的部门维度判定：
// 未标记部门、本人为合同经理、部门重叠，或在该区域担任任一标记部门的负责人
func taskDepartmentAccess(p Principal, ref EntityRef) bool {
	if len(ref.DepartmentIDs) == 0 {
		return true
	}
	if ref.ContractManagerID != "" && ref.ContractManagerID == p.ID() {
		return true
	}
	for _, d := range ref.DepartmentIDs {
		if p.InDepartment(d) {
			return true
		}
		if p.Level() >= LevelManager && p.HeadsDepartment(d, ref.RegionID) {
			return true
		}
	}
	return false
}

func executantRule(p Principal, op Operation, ref EntityRef) bool {
	switch ref.Kind {
	case KindDepartment:
		return op == OpView
	case KindRegion, KindDepartmentHead, KindContract, KindSubdivision:
		return op == OpView && inScope(p, ref)
	case KindTask:
		if !inScope(p, ref) {
			return false
		}
		switch op {
		case OpView:
			return true
		case OpEdit, OpChangeStatus, OpComment:
			return ref.isAssigned(p.ID())
		default:
			return false
		}
	case KindIssue:
		if isGlobalIssue(ref) || !inScope(p, ref) {
			return false
		}
		return op == OpView || op == OpComment
	case KindUser:
		return op == OpView && viewUser(p, ref)
	default:
		return false
	}
}

func auditorRule(p Principal, op Operation, ref EntityRef) bool {
	if op != OpView {
		return false
	}
	switch ref.Kind {
	case KindDepartment:
		return true
	case KindIssue:
		return !isGlobalIssue(ref) && inScope(p, ref)
	case KindUser:
		return viewUser(p, ref)
	default:
		return inScope(p, ref)
	}
}
