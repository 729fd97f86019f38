package authz

// RegionFilter 列表查询的区域过滤条件：全部区域或单一区域
type RegionFilter struct {
	All      bool
	RegionID string
}

// Matches 判断某区域是否在过滤范围内；空区域只对 All 生效
func (f RegionFilter) Matches(regionID string) bool {
	if f.All {
		return true
	}
	return regionID != "" && regionID == f.RegionID
}

// PermissionSet 针对单个实体在请求开始时一次性解析的权限集合
// 直接作为数据返回给前端，不在渲染层传递判定函数
type PermissionSet struct {
	CanView         bool `json:"can_view"`
	CanEdit         bool `json:"can_edit"`
	CanDelete       bool `json:"can_delete"`
	CanComment      bool `json:"can_comment"`
	CanChangeStatus bool `json:"can_change_status"`
}
