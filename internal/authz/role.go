package authz

import (
	"fmt"
	"strings"
)

// Role 封闭的角色枚举，每个角色对应固定的数值等级
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAuditor
	RoleExecutant
	RoleManager
	RoleDirector
	RoleAdmin
)

// 角色等级阈值
const (
	LevelAdmin     = 100
	LevelDirector  = 80
	LevelManager   = 50
	LevelExecutant = 20
	LevelAuditor   = 10
)

// ParseRole 将存储中的角色字符串转换为枚举，未知字符串返回错误
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "director":
		return RoleDirector, nil
	case "manager":
		return RoleManager, nil
	case "executant":
		return RoleExecutant, nil
	case "auditor":
		return RoleAuditor, nil
	default:
		return RoleUnknown, fmt.Errorf("未知角色 %q", s)
	}
}

// String 返回存储用的角色字符串
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDirector:
		return "director"
	case RoleManager:
		return "manager"
	case RoleExecutant:
		return "executant"
	case RoleAuditor:
		return "auditor"
	default:
		return "unknown"
	}
}

// Level 角色等级，数值越大权限越高
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return LevelAdmin
	case RoleDirector:
		return LevelDirector
	case RoleManager:
		return LevelManager
	case RoleExecutant:
		return LevelExecutant
	case RoleAuditor:
		return LevelAuditor
	default:
		return 0
	}
}

// Outranks 严格高于另一角色
func (r Role) Outranks(other Role) bool {
	return r.Level() > other.Level()
}

// Valid 是否为已知角色
func (r Role) Valid() bool { return r != RoleUnknown && r <= RoleAdmin }
