package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"atlas/config"
	"atlas/internal/api/handler"
	"atlas/internal/api/middleware"
	"atlas/internal/api/router"
	"atlas/internal/authz"
	"atlas/internal/notifier"
	"atlas/internal/repository"
	"atlas/internal/service"
	"atlas/pkg/database"
	"atlas/pkg/jwt"
	applogger "atlas/pkg/logger"
	"atlas/pkg/pusher"
	"atlas/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ATLAS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("pusher", cfg.Pusher.Enabled),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口变量保持真正的 nil，避免带类型的空指针绕过降级判断
	var (
		tokens      service.TokenStore
		unread      service.UnreadCache
		notifyCache notifier.UnreadCache
		limiter     middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与未读数缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		tokens, unread, notifyCache, limiter = rdb, rdb, rdb, rdb
	}

	// 5. 实时推送与通知分发
	repo := repository.NewRepository(db)
	push := pusher.NewClient(&cfg.Pusher)
	worker := notifier.NewPushWorker(push, repo.Notification, notifier.PushWorkerConfig{
		Workers:        cfg.Notify.Workers,
		QueueSize:      cfg.Notify.QueueSize,
		MaxRetries:     cfg.Notify.MaxRetries,
		InitialBackoff: cfg.Notify.InitialBackoff,
		PublishRate:    cfg.Notify.PublishRate,
	}, logger)
	dispatcher := notifier.NewDispatcher(repo.Notification, worker, notifyCache, logger)

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(service.Dependencies{
		Config:     cfg,
		Repo:       repo,
		JWT:        jwtMgr,
		Resolver:   authz.NewResolver(logger),
		Dispatcher: dispatcher,
		Tokens:     tokens,
		Unread:     unread,
		Logger:     logger,
	})
	h := handler.NewHandler(svc, push)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, router.Options{
		JWT:     jwtMgr,
		Auth:    svc.Auth,
		Limiter: limiter,
		Ready:   sqlDB.PingContext,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 8. 启动 HTTP 服务器与推送队列，收到信号后优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("开始优雅关闭...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("服务器关闭异常", zap.Error(err))
		}

		// HTTP 停止后不再有新任务入队，再排空推送队列
		stopWorker()
		worker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("服务异常退出", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
