package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"atlas/internal/authz"
	"atlas/internal/notifier"
	"atlas/internal/repository"
	"atlas/internal/service"
	"atlas/pkg/jwt"
	"atlas/pkg/pusher"
	"atlas/pkg/redis"
)

type remindOutput struct {
	Command    string                  `json:"command"`
	At         time.Time               `json:"at"`
	DurationMS int64                   `json:"duration_ms"`
	Result     *service.ReminderReport `json:"result"`
}

func newRemindCmd(opts *rootOptions) *cobra.Command {
	var (
		at     string
		window time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remind-deadlines",
		Short: "发送截止提醒与逾期升级通知（由 cron 定时调用）",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t.UTC()
			}

			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()
			if window > 0 {
				rt.cfg.Notify.DeadlineWindow = window
			}

			repo := repository.NewRepository(rt.db)
			var cache notifier.UnreadCache
			if rdb, err := redis.NewClient(&rt.cfg.Redis, rt.logger); err == nil {
				defer rdb.Close()
				cache = rdb
			}

			// 批处理不受请求延迟约束：队列满时等待，不丢弃推送
			worker := notifier.NewPushWorker(pusher.NewClient(&rt.cfg.Pusher), repo.Notification, notifier.PushWorkerConfig{
				Workers:        rt.cfg.Notify.Workers,
				QueueSize:      rt.cfg.Notify.QueueSize,
				MaxRetries:     rt.cfg.Notify.MaxRetries,
				InitialBackoff: rt.cfg.Notify.InitialBackoff,
				PublishRate:    rt.cfg.Notify.PublishRate,
				Blocking:       true,
			}, rt.logger)
			workerCtx, stopWorker := context.WithCancel(context.Background())
			worker.Start(workerCtx)

			dispatcher := notifier.NewDispatcher(repo.Notification, worker, cache, rt.logger)
			svc := service.NewService(service.Dependencies{
				Config:     rt.cfg,
				Repo:       repo,
				JWT:        jwt.NewManager(&rt.cfg.Auth),
				Resolver:   authz.NewResolver(rt.logger),
				Dispatcher: dispatcher,
				Logger:     rt.logger,
			})

			start := time.Now()
			report, runErr := svc.Reminder.Run(cmd.Context(), now)

			// 排空推送队列后再退出
			stopWorker()
			worker.Close()
			if runErr != nil {
				return runErr
			}

			return writeJSON(remindOutput{
				Command:    "remind-deadlines",
				At:         now,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     report,
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "以指定时间运行（RFC3339，默认当前时间）")
	cmd.Flags().DurationVar(&window, "window", 0, "提醒窗口（默认取 notify.deadline_window）")
	return cmd
}
