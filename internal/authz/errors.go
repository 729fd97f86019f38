package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrDenied 操作被拒绝；对外统一表现为 403，不说明原因
	ErrDenied = errors.New("无权限访问")

	// ErrDataIntegrity 实体归属链无法解析；对外同样表现为 403
	ErrDataIntegrity = errors.New("实体归属无法解析")
)

// DataIntegrityError 归属链断裂的详细信息，仅用于内部日志
type DataIntegrityError struct {
	Kind   EntityKind
	ID     string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s %s 归属无法解析: %s", e.Kind, e.ID, e.Reason)
}

// Is 使 errors.Is(err, ErrDataIntegrity) 成立
func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// NewDataIntegrityError 构造归属链断裂错误
func NewDataIntegrityError(kind EntityKind, id, reason string) *DataIntegrityError {
	return &DataIntegrityError{Kind: kind, ID: id, Reason: reason}
}

// IsDenied 拒绝或归属链断裂都视为无权限
func IsDenied(err error) bool {
	return errors.Is(err, ErrDenied) || errors.Is(err, ErrDataIntegrity)
}
