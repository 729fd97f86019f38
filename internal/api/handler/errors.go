package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/authz"
	apperrors "atlas/pkg/errors"
	"atlas/pkg/response"
)

// handleCommonError 各模块共用的错误映射，返回 false 表示未处理
// 越权与归属链断裂统一返回 403，不携带任何范围信息
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case authz.IsDenied(err):
		response.Denied(c)
	case errors.Is(err, apperrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被他人修改，请刷新后重试")
	default:
		return false
	}
	return true
}
