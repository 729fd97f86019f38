package service

import (
	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
)

func toUserResponse(u *model.User, departmentIDs []string) dto.UserResponse {
	resp := dto.UserResponse{
		ID:            u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		RegionID:      u.RegionID,
		DepartmentIDs: departmentIDs,
		IsActive:      u.IsActive,
	}
	if resp.DepartmentIDs == nil {
		resp.DepartmentIDs = []string{}
	}
	if u.Region != nil {
		resp.RegionName = u.Region.Name
	}
	return resp
}

func toRegionResponse(r *model.Region, perms authz.PermissionSet) dto.RegionResponse {
	return dto.RegionResponse{
		ID:          r.RegionID,
		Name:        r.Name,
		ManagerID:   r.ManagerID,
		Permissions: perms,
	}
}

func toContractResponse(c *model.Contract, perms authz.PermissionSet) dto.ContractResponse {
	resp := dto.ContractResponse{
		ID:                 c.ContractID,
		RegionID:           c.RegionID,
		Name:               c.Name,
		ManagerID:          c.ManagerID,
		Status:             c.Status,
		ProgressPercentage: c.ProgressPercentage,
		Version:            c.Version,
		CreatedAt:          dto.FormatTime(c.CreatedAt),
		Permissions:        perms,
	}
	if c.Region != nil {
		resp.RegionName = c.Region.Name
	}
	return resp
}

func toSubdivisionResponse(s *model.Subdivision, perms authz.PermissionSet) dto.SubdivisionResponse {
	return dto.SubdivisionResponse{
		ID:          s.SubdivisionID,
		ContractID:  s.ContractID,
		Code:        s.Code,
		Name:        s.Name,
		Permissions: perms,
	}
}

func toTaskResponse(t *model.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:            t.TaskID,
		SubdivisionID: t.SubdivisionID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Deadline:      dto.FormatTimePtr(t.Deadline),
		Version:       t.Version,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     dto.FormatTime(t.CreatedAt),
	}
}

func toTaskDetail(t *model.Task, assignees, departments []string, perms authz.PermissionSet) *dto.TaskResponse {
	resp := toTaskResponse(t)
	resp.AssigneeIDs = assignees
	resp.DepartmentIDs = departments
	resp.Permissions = &perms
	return &resp
}

func toTaskCommentResponse(c *model.TaskComment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:        c.CommentID,
		UserID:    c.UserID,
		Body:      c.Body,
		CreatedAt: dto.FormatTime(c.CreatedAt),
	}
	if c.User != nil {
		resp.AuthorName = c.User.Name
	}
	return resp
}

func toIssueCommentResponse(c *model.IssueComment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:        c.CommentID,
		UserID:    c.UserID,
		Body:      c.Body,
		CreatedAt: dto.FormatTime(c.CreatedAt),
	}
	if c.User != nil {
		resp.AuthorName = c.User.Name
	}
	return resp
}

func toIssueResponse(i *model.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:           i.IssueID,
		RegionID:     i.RegionID,
		DepartmentID: i.DepartmentID,
		Title:        i.Title,
		Body:         i.Body,
		Status:       i.Status,
		CreatedBy:    i.CreatedBy,
		CreatedAt:    dto.FormatTime(i.CreatedAt),
	}
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    dto.FormatTimePtr(n.ReadAt),
		CreatedAt: dto.FormatTime(n.CreatedAt),
	}
}
