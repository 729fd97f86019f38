package handler

import (
	"atlas/internal/service"
	"atlas/pkg/pusher"
)

// PusherGateway 前端实时推送所需的连接参数与私有频道签名
type PusherGateway interface {
	Enabled() bool
	PublicConfig() pusher.PublicConfig
	AuthorizeUserChannel(userID string, body []byte) ([]byte, error)
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Region       *RegionHandler
	Department   *DepartmentHandler
	Contract     *ContractHandler
	Subdivision  *SubdivisionHandler
	Task         *TaskHandler
	Issue        *IssueHandler
	Notification *NotificationHandler
	Pusher       *PusherHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, gateway PusherGateway) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Region:       NewRegionHandler(svc.Region),
		Department:   NewDepartmentHandler(svc.Department),
		Contract:     NewContractHandler(svc.Contract),
		Subdivision:  NewSubdivisionHandler(svc.Subdivision),
		Task:         NewTaskHandler(svc.Task, svc.Calendar),
		Issue:        NewIssueHandler(svc.Issue),
		Notification: NewNotificationHandler(svc.Notification),
		Pusher:       NewPusherHandler(gateway),
	}
}
