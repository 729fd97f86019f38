package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/pkg/pusher"
	"atlas/pkg/response"
)

// PusherHandler 实时推送连接参数与私有频道鉴权
type PusherHandler struct {
	gateway PusherGateway
}

// NewPusherHandler 创建 PusherHandler
func NewPusherHandler(gateway PusherGateway) *PusherHandler {
	return &PusherHandler{gateway: gateway}
}

// Config 前端连接参数，不含 Secret
// GET /api/pusher/config
func (h *PusherHandler) Config(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if h.gateway == nil || !h.gateway.Enabled() {
		response.Failure(c, http.StatusServiceUnavailable, "实时推送未启用")
		return
	}

	response.Success(c, gin.H{
		"data":   h.gateway.PublicConfig(),
		"userId": userID,
	})
}

// Auth 私有频道鉴权，只允许订阅本人的 private-user-{id}
// POST /api/pusher/auth
func (h *PusherHandler) Auth(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if h.gateway == nil || !h.gateway.Enabled() {
		response.Failure(c, http.StatusServiceUnavailable, "实时推送未启用")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Failure(c, http.StatusBadRequest, "请求体读取失败")
		return
	}

	payload, err := h.gateway.AuthorizeUserChannel(userID, body)
	if err != nil {
		switch {
		case errors.Is(err, pusher.ErrChannelInvalid):
			response.Failure(c, http.StatusForbidden, "无权订阅该频道")
		case errors.Is(err, pusher.ErrDisabled):
			response.Failure(c, http.StatusServiceUnavailable, "实时推送未启用")
		default:
			response.Failure(c, http.StatusForbidden, "频道鉴权失败")
		}
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
