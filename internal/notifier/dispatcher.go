package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"atlas/internal/model"
	"atlas/pkg/pusher"
)

// Store 通知持久化
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Enqueuer 推送任务入队，队列已满时返回 false
type Enqueuer interface {
	Enqueue(job PushJob) bool
}

// UnreadCache 未读数缓存失效
type UnreadCache interface {
	InvalidateUnreadCount(ctx context.Context, userIDs ...string) error
}

// PushNotification 推送负载中的通知字段
type PushNotification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// PushMessage 频道事件负载 {notification: {...}}
type PushMessage struct {
	Notification PushNotification `json:"notification"`
}

// Result 一次分发的结果
type Result struct {
	// Persisted 成功写入的通知
	Persisted []*model.Notification
	// Failed 持久化失败的接收人
	Failed []string
}

// Dispatcher 通知分发器
type Dispatcher struct {
	store  Store
	queue  Enqueuer
	cache  UnreadCache
	logger *zap.Logger
}

// NewDispatcher 创建通知分发器；queue 与 cache 可为 nil
func NewDispatcher(store Store, queue Enqueuer, cache UnreadCache, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:  store,
		queue:  queue,
		cache:  cache,
		logger: logger.Named("notifier"),
	}
}

// Dispatch 去重接收人，逐条持久化通知并为每条入队推送任务
//
// 每个接收人的写入相互独立，单条失败只记录日志，不影响其他接收人；
// 本方法从不返回错误，调用方无需处理分发失败。
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, recipients []string) Result {
	var res Result
	content := Render(ev)
	event := string(ev.Type)

	for _, userID := range dedupe(recipients) {
		n := &model.Notification{
			UserID:  userID,
			Type:    content.Type,
			Title:   content.Title,
			Message: content.Message,
			Link:    content.Link,
		}
		if ev.Payload.ActorID != "" {
			n.CreatedBy = model.StrPtr(ev.Payload.ActorID)
		}

		if err := d.store.Create(ctx, n); err != nil {
			notificationsFailed.WithLabelValues(event).Inc()
			d.logger.Error("通知持久化失败",
				zap.String("event", event),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			res.Failed = append(res.Failed, userID)
			continue
		}
		notificationsPersisted.WithLabelValues(event).Inc()
		res.Persisted = append(res.Persisted, n)
	}

	d.invalidate(ctx, res.Persisted)

	for _, n := range res.Persisted {
		d.enqueue(PushJob{
			ID:             uuid.NewString(),
			NotificationID: n.NotificationID,
			Channel:        pusher.UserChannel(n.UserID),
			Event:          pusher.EventNewNotification,
			Message:        messageOf(n),
		})
	}

	if ev.Global {
		id := uuid.NewString()
		d.enqueue(PushJob{
			ID:      id,
			Channel: pusher.GlobalChannel,
			Event:   pusher.EventGlobalNotification,
			Message: PushMessage{Notification: PushNotification{
				ID:        id,
				Type:      content.Type,
				Title:     content.Title,
				Message:   content.Message,
				Link:      content.Link,
				CreatedAt: time.Now().UTC(),
			}},
		})
	}

	if len(res.Failed) > 0 {
		d.logger.Warn("部分通知未能持久化",
			zap.String("event", event),
			zap.Int("persisted", len(res.Persisted)),
			zap.Int("failed", len(res.Failed)),
		)
	}
	return res
}

func (d *Dispatcher) enqueue(job PushJob) {
	if d.queue == nil {
		return
	}
	if !d.queue.Enqueue(job) {
		d.logger.Warn("推送队列已满，丢弃实时推送",
			zap.String("channel", job.Channel),
			zap.String("notification_id", job.NotificationID),
		)
	}
}

func (d *Dispatcher) invalidate(ctx context.Context, persisted []*model.Notification) {
	if d.cache == nil || len(persisted) == 0 {
		return
	}
	ids := make([]string, 0, len(persisted))
	for _, n := range persisted {
		ids = append(ids, n.UserID)
	}
	if err := d.cache.InvalidateUnreadCount(ctx, ids...); err != nil {
		d.logger.Warn("清除未读数缓存失败", zap.Error(err))
	}
}

func messageOf(n *model.Notification) PushMessage {
	return PushMessage{Notification: PushNotification{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}}
}
