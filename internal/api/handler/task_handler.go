package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/internal/dto"
	"atlas/internal/service"
	"atlas/pkg/response"
)

// TaskHandler 任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc     service.TaskService
	calendarSvc service.CalendarService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService, calendarSvc service.CalendarService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc, calendarSvc: calendarSvc}
}

// ListTasks 任务列表
// GET /api/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tasks, total, err := h.taskSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OKPage(c, tasks, total, req.GetPage(), req.GetPageSize())
}

// GetTask 任务详情（附带权限集合）
// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}

	task, err := h.taskSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, task)
}

// CreateTask 创建任务
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.Created(c, task)
}

// UpdateTask 更新任务（乐观锁）
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, task)
}

// ChangeStatus 修改任务状态
// PUT /api/tasks/:id/status
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}
	var req dto.ChangeTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.ChangeStatus(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, task)
}

// SetAssignees 替换任务执行人
// PUT /api/tasks/:id/assignees
func (h *TaskHandler) SetAssignees(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}
	var req dto.SetAssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.SetAssignees(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, task)
}

// DeleteTask 删除任务
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}

	if err := h.taskSvc.Delete(c.Request.Context(), p, id); err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListComments 任务评论
// GET /api/tasks/:id/comments
func (h *TaskHandler) ListComments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}

	comments, err := h.taskSvc.ListComments(c.Request.Context(), p, id)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, gin.H{"list": comments})
}

// AddComment 发表任务评论
// POST /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := bindID(c, "id", "任务ID不能为空")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	comment, err := h.taskSvc.AddComment(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.Created(c, comment)
}

// Calendar 被指派任务截止时间的 iCalendar 订阅
// GET /api/tasks/calendar.ics
func (h *TaskHandler) Calendar(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.Feed(c.Request.Context(), p)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `inline; filename="atlas-tasks.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// handleTaskError 统一处理任务模块业务错误
func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 15001, "任务不存在")
	case errors.Is(err, service.ErrSubdivisionNotFound):
		response.BadRequest(c, 15002, "子项不存在")
	case errors.Is(err, service.ErrAssigneeInvalid):
		response.BadRequest(c, 15003, "执行人不存在、已停用或不属于该区域")
	case errors.Is(err, service.ErrDepartmentInvalid):
		response.BadRequest(c, 15004, "部门不存在或已停用")
	default:
		response.InternalError(c)
	}
}
