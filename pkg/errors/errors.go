package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrOrphanedRecord 归属链断裂：记录的上级实体不存在或已删除
var ErrOrphanedRecord = errors.New("记录归属链不完整")
