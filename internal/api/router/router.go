package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"atlas/config"
	"atlas/internal/api/handler"
	"atlas/internal/api/middleware"
	"atlas/internal/service"
	"atlas/pkg/jwt"
)

// maxBodyBytes 全局请求体上限
const maxBodyBytes = 1 << 20

// Options 路由装配所需的外部依赖
type Options struct {
	JWT  *jwt.Manager
	Auth service.AuthService
	// Limiter 登录限流；为 nil 时不限流
	Limiter middleware.RateLimiter
	// Ready 健康检查探针（数据库连通性），可为 nil
	Ready  func(ctx context.Context) error
	Logger *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 认证模块（无需认证）
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(opts.Limiter, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(opts.JWT, opts.Auth))
		authorized.Use(middleware.Principal(opts.Auth))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块（权限由 Service 层按作用域判定）
			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.PUT("/:id/active", h.User.SetActive)
			}

			// 区域模块
			regions := authorized.Group("/regions")
			{
				regions.GET("", h.Region.ListRegions)
				regions.GET("/:id", h.Region.GetRegion)
				regions.POST("", h.Region.CreateRegion)
				regions.PUT("/:id", h.Region.UpdateRegion)
				regions.DELETE("/:id", h.Region.DeleteRegion)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", h.Department.CreateDepartment)
				departments.PUT("/:id", h.Department.UpdateDepartment)
				departments.DELETE("/:id", h.Department.DeleteDepartment)
				departments.GET("/:id/heads", h.Department.ListHeads)
				departments.PUT("/:id/heads", h.Department.AssignHead)
				departments.DELETE("/:id/heads/:regionId", h.Department.RemoveHead)
			}

			// 合同与子项
			contracts := authorized.Group("/contracts")
			{
				contracts.GET("", h.Contract.ListContracts)
				contracts.GET("/:id", h.Contract.GetContract)
				contracts.POST("", h.Contract.CreateContract)
				contracts.PUT("/:id", h.Contract.UpdateContract)
				contracts.DELETE("/:id", h.Contract.DeleteContract)
				contracts.GET("/:id/subdivisions", h.Subdivision.ListSubdivisions)
				contracts.POST("/:id/subdivisions", h.Subdivision.CreateSubdivision)
			}
			subdivisions := authorized.Group("/subdivisions")
			{
				subdivisions.GET("/:id", h.Subdivision.GetSubdivision)
				subdivisions.PUT("/:id", h.Subdivision.UpdateSubdivision)
				subdivisions.DELETE("/:id", h.Subdivision.DeleteSubdivision)
			}

			// 任务模块
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("", h.Task.ListTasks)
				tasks.GET("/calendar.ics", h.Task.Calendar)
				tasks.GET("/:id", h.Task.GetTask)
				tasks.POST("", h.Task.CreateTask)
				tasks.PUT("/:id", h.Task.UpdateTask)
				tasks.PUT("/:id/status", h.Task.ChangeStatus)
				tasks.PUT("/:id/assignees", h.Task.SetAssignees)
				tasks.DELETE("/:id", h.Task.DeleteTask)
				tasks.GET("/:id/comments", h.Task.ListComments)
				tasks.POST("/:id/comments", h.Task.AddComment)
			}

			// 问题讨论
			issues := authorized.Group("/issues")
			{
				issues.GET("", h.Issue.ListIssues)
				issues.GET("/:id", h.Issue.GetIssue)
				issues.POST("", h.Issue.CreateIssue)
				issues.PUT("/:id/status", h.Issue.ChangeStatus)
				issues.DELETE("/:id", h.Issue.DeleteIssue)
				issues.GET("/:id/comments", h.Issue.ListComments)
				issues.POST("/:id/comments", h.Issue.AddComment)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread", h.Notification.ListUnread)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/broadcast", h.Notification.Broadcast)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}

			// 实时推送
			authorized.GET("/pusher/config", h.Pusher.Config)
			authorized.POST("/pusher/auth", h.Pusher.Auth)
		}
	}

	return r
}
