package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultPushWorkers   = 3
	defaultPushQueueSize = 256
	defaultJobTimeout    = 10 * time.Second
)

// Publisher 实时推送通道
type Publisher interface {
	Trigger(ctx context.Context, channel, event string, data interface{}) error
}

// DeliveryStore 记录推送尝试时间
type DeliveryStore interface {
	MarkDelivered(ctx context.Context, notificationID string, at time.Time) error
}

// PushJob 一次频道推送
type PushJob struct {
	ID string
	// NotificationID 为空表示全局推送，无需回写投递状态
	NotificationID string
	Channel        string
	Event          string
	Message        PushMessage
}

// PushWorkerConfig 推送队列配置
type PushWorkerConfig struct {
	Workers        int
	QueueSize      int
	MaxRetries     int
	InitialBackoff time.Duration
	// PublishRate 每秒最多发布次数，<=0 表示不限速
	PublishRate float64
	// JobTimeout 单个任务（含重试）的最长耗时，关闭期间同样生效
	JobTimeout time.Duration
	// Blocking 队列满时等待空位而不丢弃，供无请求延迟约束的批处理进程使用
	// 开启后只能在 Start 之后、ctx 取消之前入队
	Blocking bool
}

// PushWorker 后台推送队列
// 有界缓冲 + 固定数量的 worker；队列满时丢弃并计数，通知本身已落库
type PushWorker struct {
	publisher Publisher
	store     DeliveryStore
	cfg       PushWorkerConfig
	limiter   *rate.Limiter
	jobs      chan PushJob
	logger    *zap.Logger
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewPushWorker 创建推送队列；store 可为 nil
func NewPushWorker(publisher Publisher, store DeliveryStore, cfg PushWorkerConfig, logger *zap.Logger) *PushWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultPushWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultPushQueueSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.PublishRate > 0 {
		burst := int(cfg.PublishRate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.PublishRate), burst)
	}

	return &PushWorker{
		publisher: publisher,
		store:     store,
		cfg:       cfg,
		limiter:   limiter,
		jobs:      make(chan PushJob, cfg.QueueSize),
		logger:    logger.Named("push-worker"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start 启动 worker；ctx 取消后各 worker 排空缓冲区再退出
func (w *PushWorker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	w.logger.Info("推送队列已启动",
		zap.Int("workers", w.cfg.Workers),
		zap.Int("queue_size", w.cfg.QueueSize),
		zap.Int("max_retries", w.cfg.MaxRetries),
	)
}

// Close 等待所有 worker 退出，需在 Start 的 ctx 取消后调用
func (w *PushWorker) Close() {
	w.wg.Wait()
}

// Enqueue 入队；默认非阻塞，队列满时丢弃
func (w *PushWorker) Enqueue(job PushJob) bool {
	if w.cfg.Blocking {
		w.jobs <- job
		pushQueueDepth.Set(float64(len(w.jobs)))
		return true
	}
	select {
	case w.jobs <- job:
		pushQueueDepth.Set(float64(len(w.jobs)))
		return true
	default:
		pushTotal.WithLabelValues("dropped").Inc()
		return false
	}
}

func (w *PushWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			w.drain(ctx)
			return
		}
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return
		case job := <-w.jobs:
			pushQueueDepth.Set(float64(len(w.jobs)))
			w.deliver(ctx, job)
		}
	}
}

// drain 取消后处理缓冲区中剩余的任务
func (w *PushWorker) drain(ctx context.Context) {
	for {
		select {
		case job := <-w.jobs:
			w.deliver(ctx, job)
		default:
			return
		}
	}
}

// deliver 推送一次（含重试），无论结果如何都回写投递时间
// 已出队的任务不受 Start 的 ctx 取消影响，只受 JobTimeout 约束
func (w *PushWorker) deliver(parent context.Context, job PushJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), w.cfg.JobTimeout)
	defer cancel()

	if err := w.publish(ctx, job); err != nil {
		w.logger.Warn("实时推送失败，等待客户端轮询补齐",
			zap.String("job_id", job.ID),
			zap.String("channel", job.Channel),
			zap.String("notification_id", job.NotificationID),
			zap.Error(err),
		)
	}

	if job.NotificationID == "" || w.store == nil {
		return
	}
	if err := w.store.MarkDelivered(ctx, job.NotificationID, w.now()); err != nil {
		w.logger.Warn("回写投递状态失败",
			zap.String("notification_id", job.NotificationID),
			zap.Error(err),
		)
	}
}

func (w *PushWorker) publish(ctx context.Context, job PushJob) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.cfg.InitialBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(w.cfg.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		if err := w.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		if attempt > 1 {
			pushTotal.WithLabelValues("retry").Inc()
		}

		start := time.Now()
		err := w.publisher.Trigger(ctx, job.Channel, job.Event, job.Message)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			pushDuration.WithLabelValues("error").Observe(elapsed)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}
		pushDuration.WithLabelValues("success").Observe(elapsed)
		return nil
	}

	notify := func(err error, next time.Duration) {
		w.logger.Debug("推送失败，稍后重试",
			zap.String("job_id", job.ID),
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		pushTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("推送 %d 次后失败: %w", attempt, err)
	}
	pushTotal.WithLabelValues("success").Inc()
	return nil
}
