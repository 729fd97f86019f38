package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/model"
	"atlas/internal/notifier"
)

// NotificationService 站内通知业务接口，所有操作只作用于当前用户自己的通知
type NotificationService interface {
	List(ctx context.Context, p authz.Principal, limit int) ([]dto.NotificationResponse, error)
	ListUnread(ctx context.Context, p authz.Principal, limit int) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, p authz.Principal) (int64, error)
	MarkRead(ctx context.Context, p authz.Principal, id string) error
	MarkAllRead(ctx context.Context, p authz.Principal) (int64, error)
	// Broadcast 向全部在职用户发送公告并推送全局频道，返回成功写入的条数
	Broadcast(ctx context.Context, p authz.Principal, req *dto.BroadcastRequest) (int, error)
}

type notificationService struct {
	base
	dispatcher Dispatcher
	cache      UnreadCache
	cacheTTL   time.Duration
	now        func() time.Time
}

// NewNotificationService 创建 NotificationService 实例，cache 可为 nil
func NewNotificationService(b base, dispatcher Dispatcher, cache UnreadCache, cacheTTL time.Duration) NotificationService {
	return &notificationService{
		base:       b,
		dispatcher: dispatcher,
		cache:      cache,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

func (s *notificationService) List(ctx context.Context, p authz.Principal, limit int) ([]dto.NotificationResponse, error) {
	rows, err := s.repo.Notification.ListRecent(ctx, p.ID(), limit)
	if err != nil {
		s.logger.Error("查询通知失败", zap.String("user_id", p.ID()), zap.Error(err))
		return nil, err
	}
	return toNotificationResponses(rows), nil
}

func (s *notificationService) ListUnread(ctx context.Context, p authz.Principal, limit int) ([]dto.NotificationResponse, error) {
	rows, err := s.repo.Notification.ListUnread(ctx, p.ID(), limit)
	if err != nil {
		s.logger.Error("查询未读通知失败", zap.String("user_id", p.ID()), zap.Error(err))
		return nil, err
	}
	return toNotificationResponses(rows), nil
}

// UnreadCount 优先读缓存；缓存异常时回退数据库
func (s *notificationService) UnreadCount(ctx context.Context, p authz.Principal) (int64, error) {
	userID := p.ID()
	if s.cache != nil {
		count, ok, err := s.cache.GetUnreadCount(ctx, userID)
		if err != nil {
			s.logger.Warn("读取未读数缓存失败", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetUnreadCount(ctx, userID, count, s.cacheTTL); err != nil {
			s.logger.Warn("写入未读数缓存失败", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead 幂等；不属于当前用户的通知视为不存在
func (s *notificationService) MarkRead(ctx context.Context, p authz.Principal, id string) error {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("查询通知失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.authz.Authorize(p, authz.OpEdit, authz.NotificationRef(n.NotificationID, n.UserID)); err != nil {
		return ErrNotificationNotFound
	}
	if err := s.repo.Notification.MarkRead(ctx, id, p.ID(), s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("标记通知已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.invalidate(ctx, p.ID())
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, p authz.Principal) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, p.ID(), s.now())
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", p.ID()), zap.Error(err))
		return 0, err
	}
	s.invalidate(ctx, p.ID())
	return n, nil
}

func (s *notificationService) Broadcast(ctx context.Context, p authz.Principal, req *dto.BroadcastRequest) (int, error) {
	if p.Level() < authz.LevelAdmin {
		return 0, authz.ErrDenied
	}

	ids, err := s.repo.User.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error("查询在职用户失败", zap.Error(err))
		return 0, err
	}

	ev := notifier.Event{
		Type:   notifier.EventAnnouncement,
		Global: true,
		Payload: notifier.Payload{
			ActorID: p.ID(),
			Title:   req.Title,
			Text:    req.Message,
			Link:    req.Link,
		},
	}
	res := s.dispatcher.Dispatch(context.WithoutCancel(ctx), ev, ids)
	s.logger.Info("系统公告已发送",
		zap.String("by", p.ID()),
		zap.Int("persisted", len(res.Persisted)),
		zap.Int("failed", len(res.Failed)),
	)
	return len(res.Persisted), nil
}

func (s *notificationService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		s.logger.Warn("清除未读数缓存失败", zap.String("user_id", userID), zap.Error(err))
	}
}

func toNotificationResponses(rows []model.Notification) []dto.NotificationResponse {
	result := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toNotificationResponse(&rows[i]))
	}
	return result
}
