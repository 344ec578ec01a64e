package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paiban/config"
	"paiban/internal/api/handler"
	"paiban/internal/api/middleware"
	"paiban/internal/api/ws"
	"paiban/pkg/jwt"
	"paiban/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, hub *ws.Hub, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开预约入口（无需认证，限流保护）
		public := v1.Group("/public")
		public.Use(middleware.RateLimit(rdb, cfg.Schedule.IntakeRateLimit, cfg.Schedule.IntakeRateWindow))
		{
			public.POST("/organizations/:org_id/bookings", h.Intake.Create)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 会话注销（将当前令牌加入黑名单）
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 预约模块
			bookings := authorized.Group("/bookings")
			{
				bookings.GET("", h.Booking.List)
				bookings.GET("/:id", h.Booking.Get)
				bookings.POST("", middleware.RoleAuth("admin", "scheduler"), h.Booking.Create)
				bookings.PATCH("/:id", middleware.RoleAuth("admin", "scheduler"), h.Booking.Edit)
				bookings.DELETE("/:id", middleware.RoleAuth("admin", "scheduler"), h.Booking.Delete)
				bookings.POST("/:id/claim", h.Booking.Claim)
				bookings.POST("/:id/reassign", middleware.RoleAuth("admin", "scheduler"), h.Booking.Reassign)
				bookings.POST("/:id/swap-request", h.Booking.RequestSwap)
				bookings.POST("/:id/approve", middleware.RoleAuth("admin", "scheduler"), h.Booking.Approve)
				bookings.POST("/:id/decline", middleware.RoleAuth("admin", "scheduler"), h.Booking.Decline)
			}

			// 排班视图与导出
			schedule := authorized.Group("/schedule")
			{
				schedule.GET("/day", h.Schedule.GetDay)
				schedule.GET("/range", h.Schedule.GetRange)
				schedule.GET("/export", middleware.RoleAuth("admin", "scheduler"), h.Schedule.ExportXLSX)
				schedule.GET("/ics/:employee_id", h.Schedule.ExportICS)
			}

			// 员工花名册（只读，维护由外部人事模块负责）
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.List)
				employees.GET("/:id", h.Employee.Get)
			}

			// 实时推送（组织维度变更提示）
			authorized.GET("/ws", func(c *gin.Context) {
				orgID, exists := c.Get("organization_id")
				if !exists {
					c.AbortWithStatus(401)
					return
				}
				if err := hub.HandleConnection(c.Writer, c.Request, orgID.(string)); err != nil {
					logger.Warn("WebSocket 升级失败", zap.Error(err))
				}
			})
		}
	}

	return r
}
