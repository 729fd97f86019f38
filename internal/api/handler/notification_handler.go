package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
// 前端通知组件直接读取 success 字段，这里统一使用扁平响应
type NotificationHandler struct {
	notifSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notifSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// List 最近的通知
// GET /api/notifications?limit=
func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, "参数校验失败")
		return
	}

	list, err := h.notifSvc.List(c.Request.Context(), p, req.GetLimit())
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, gin.H{"notifications": list})
}

// ListUnread 未读通知
// GET /api/notifications/unread
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, "参数校验失败")
		return
	}

	list, err := h.notifSvc.ListUnread(c.Request.Context(), p, req.GetLimit())
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, gin.H{"notifications": list})
}

// UnreadCount 未读数
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	count, err := h.notifSvc.UnreadCount(c.Request.Context(), p)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// MarkRead 标记单条已读（幂等）
// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		response.Failure(c, http.StatusBadRequest, "通知ID不能为空")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), p, id); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, nil)
}

// MarkAllRead 全部标记已读
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	n, err := h.notifSvc.MarkAllRead(c.Request.Context(), p)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, gin.H{"count": n})
}

// Broadcast 系统公告（管理员）
// POST /api/notifications/broadcast
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, "参数校验失败")
		return
	}

	sent, err := h.notifSvc.Broadcast(c.Request.Context(), p, &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Success(c, gin.H{"count": sent})
}

// handleNotificationError 统一处理通知模块业务错误
func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.Failure(c, http.StatusNotFound, "通知不存在")
	case authz.IsDenied(err):
		response.Failure(c, http.StatusForbidden, "无权限访问")
	default:
		response.Failure(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
