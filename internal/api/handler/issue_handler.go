package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// IssueHandler 问题讨论 HTTP 处理器
type IssueHandler struct {
	issueSvc service.IssueService
}

// NewIssueHandler 创建 IssueHandler
func NewIssueHandler(issueSvc service.IssueService) *IssueHandler {
	return &IssueHandler{issueSvc: issueSvc}
}

// ListIssues 问题列表
// GET /api/issues
func (h *IssueHandler) ListIssues(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.IssueListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	issues, total, err := h.issueSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OKPage(c, issues, total, req.GetPage(), req.GetPageSize())
}

// GetIssue 问题详情
// GET /api/issues/:id
func (h *IssueHandler) GetIssue(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "问题ID不能为空")
	if !ok {
		return
	}

	issue, err := h.issueSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, issue)
}

// CreateIssue 创建问题
// POST /api/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	issue, err := h.issueSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.Created(c, issue)
}

// ChangeStatus 修改问题状态
// PUT /api/issues/:id/status
func (h *IssueHandler) ChangeStatus(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "问题ID不能为空")
	if !ok {
		return
	}
	var req dto.ChangeIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	issue, err := h.issueSvc.ChangeStatus(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, issue)
}

// DeleteIssue 删除问题
// DELETE /api/issues/:id
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "问题ID不能为空")
	if !ok {
		return
	}

	if err := h.issueSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListComments 问题回复
// GET /api/issues/:id/comments
func (h *IssueHandler) ListComments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "问题ID不能为空")
	if !ok {
		return
	}

	comments, err := h.issueSvc.ListComments(c.Request.Context(), p, id)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, gin.H{"list": comments})
}

// AddComment 回复问题
// POST /api/issues/:id/comments
func (h *IssueHandler) AddComment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "问题ID不能为空")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	comment, err := h.issueSvc.AddComment(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.Created(c, comment)
}

// handleIssueError 统一处理问题模块业务错误
func (h *IssueHandler) handleIssueError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrIssueNotFound):
		response.NotFound(c, 16001, "问题不存在")
	case errors.Is(err, service.ErrDepartmentInvalid):
		response.BadRequest(c, 16002, "部门不存在或已停用")
	default:
		response.InternalError(c)
	}
}
