package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"atlas/config"
	"atlas/internal/authz"
	"atlas/internal/notifier"
	"atlas/internal/repository"
	"atlas/pkg/jwt"
)

// TokenStore Token 黑名单（Redis）
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// UnreadCache 未读通知数缓存（Redis）
type UnreadCache interface {
	GetUnreadCount(ctx context.Context, userID string) (int64, bool, error)
	SetUnreadCount(ctx context.Context, userID string, count int64, ttl time.Duration) error
	InvalidateUnreadCount(ctx context.Context, userIDs ...string) error
}

// Dispatcher 通知分发，从不返回错误
type Dispatcher interface {
	Dispatch(ctx context.Context, ev notifier.Event, recipients []string) notifier.Result
}

// Dependencies 构造 Service 聚合所需的依赖
// Tokens 与 Unread 可为 nil（Redis 不可用时降级）
type Dependencies struct {
	Config     *config.Config
	Repo       *repository.Repository
	JWT        *jwt.Manager
	Resolver   *authz.Resolver
	Dispatcher Dispatcher
	Tokens     TokenStore
	Unread     UnreadCache
	Logger     *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Region       RegionService
	Department   DepartmentService
	Contract     ContractService
	Subdivision  SubdivisionService
	Task         TaskService
	Issue        IssueService
	Notification NotificationService
	Reminder     ReminderService
	Calendar     CalendarService
}

// NewService 创建 Service 聚合
func NewService(deps Dependencies) *Service {
	b := base{repo: deps.Repo, authz: deps.Resolver, logger: deps.Logger}
	return &Service{
		Auth:         NewAuthService(deps.Config, deps.Repo, deps.JWT, deps.Tokens, deps.Logger),
		User:         NewUserService(b),
		Region:       NewRegionService(b),
		Department:   NewDepartmentService(b),
		Contract:     NewContractService(b),
		Subdivision:  NewSubdivisionService(b),
		Task:         NewTaskService(b, deps.Dispatcher),
		Issue:        NewIssueService(b, deps.Dispatcher),
		Notification: NewNotificationService(b, deps.Dispatcher, deps.Unread, deps.Config.Notify.UnreadCacheTTL),
		Reminder:     NewReminderService(b, deps.Dispatcher, deps.Config.Notify.DeadlineWindow),
		Calendar:     NewCalendarService(b, deps.Config.Server.BaseURL),
	}
}

// base 各业务服务共享的依赖：数据访问、作用域解析器与日志
type base struct {
	repo   *repository.Repository
	authz  *authz.Resolver
	logger *zap.Logger
}

