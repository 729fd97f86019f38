package authz

import "sort"

// HeadGrant 部门负责人授权：在某区域内负责某部门
type HeadGrant struct {
	DepartmentID string
	RegionID     string
}

// Principal 当前请求的已认证主体
//
// 每个请求由中间件根据已校验的 Token 与数据库记录构造一次，之后只读。
// 区域与部门是两个独立的可选维度：未分配区域表示区域不受限；
// 未加入任何部门不代表任何额外权限。
type Principal struct {
	id          string
	role        Role
	regionID    string
	hasRegion   bool
	active      bool
	departments map[string]struct{}
	heads       map[HeadGrant]struct{}
}

// NewPrincipal 构造主体。regionID 为 nil 表示不限区域。
func NewPrincipal(id string, role Role, regionID *string, active bool, departmentIDs []string, heads []HeadGrant) Principal {
	p := Principal{
		id:          id,
		role:        role,
		active:      active,
		departments: make(map[string]struct{}, len(departmentIDs)),
		heads:       make(map[HeadGrant]struct{}, len(heads)),
	}
	if regionID != nil && *regionID != "" {
		p.regionID = *regionID
		p.hasRegion = true
	}
	for _, d := range departmentIDs {
		if d != "" {
			p.departments[d] = struct{}{}
		}
	}
	for _, h := range heads {
		if h.DepartmentID != "" && h.RegionID != "" {
			p.heads[h] = struct{}{}
		}
	}
	return p
}

func (p Principal) ID() string     { return p.id }
func (p Principal) Role() Role     { return p.role }
func (p Principal) Level() int     { return p.role.Level() }
func (p Principal) IsActive() bool { return p.active }

// RegionID 返回所属区域；ok=false 表示不限区域
func (p Principal) RegionID() (id string, ok bool) {
	return p.regionID, p.hasRegion
}

// Unrestricted 未绑定区域的主体在区域维度上不受限
func (p Principal) Unrestricted() bool { return !p.hasRegion }

// InDepartment 是否属于指定部门
func (p Principal) InDepartment(departmentID string) bool {
	_, ok := p.departments[departmentID]
	return ok
}

// DepartmentIDs 返回部门 ID 的有序副本
func (p Principal) DepartmentIDs() []string {
	ids := make([]string, 0, len(p.departments))
	for id := range p.departments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HeadsDepartment 是否在指定区域担任指定部门负责人
func (p Principal) HeadsDepartment(departmentID, regionID string) bool {
	_, ok := p.heads[HeadGrant{DepartmentID: departmentID, RegionID: regionID}]
	return ok
}

// HeadGrants 返回负责人授权的副本
func (p Principal) HeadGrants() []HeadGrant {
	grants := make([]HeadGrant, 0, len(p.heads))
	for g := range p.heads {
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].DepartmentID != grants[j].DepartmentID {
			return grants[i].DepartmentID < grants[j].DepartmentID
		}
		return grants[i].RegionID < grants[j].RegionID
	})
	return grants
}

// coversRegion 主体的区域范围是否覆盖给定区域
func (p Principal) coversRegion(regionID string) bool {
	if !p.hasRegion {
		return true
	}
	return regionID != "" && regionID == p.regionID
}
