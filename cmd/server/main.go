package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"paiban/config"
	"paiban/internal/api/handler"
	"paiban/internal/api/router"
	"paiban/internal/api/ws"
	"paiban/internal/repository"
	"paiban/internal/service"
	"paiban/pkg/database"
	"paiban/pkg/jwt"
	applogger "paiban/pkg/logger"
	"paiban/pkg/mq"
	"paiban/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
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
	// 降级后变更流与限流不可用，各副本只能依赖读穿透保持一致
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，变更流/黑名单/限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 连接 RabbitMQ（可选：失败时通知分发降级为空实现）
	var notifier service.Notifier = service.NopNotifier{}
	var pub *mq.Publisher
	pub, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		logger.Warn("RabbitMQ 连接失败，审批通知将不会投递", zap.Error(err))
		pub = nil
	} else {
		notifier = service.NewMQNotifier(pub, logger)
	}

	// 6. 初始化 JWT 管理器与 WebSocket 集线器
	jwtMgr := jwt.NewManager(&cfg.Auth)
	hub := ws.NewHub(logger)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)

	var publisher service.ChangePublisher
	var feed service.ChangeFeed
	if rdb != nil {
		bus := service.NewRedisChangeBus(rdb, logger)
		publisher = bus
		feed = bus
	}

	svc := service.NewService(cfg, repo, publisher, feed, notifier, hub, logger)
	h := handler.NewHandler(svc, rdb)

	// 7.1 启动实时同步（变更流可用时）
	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	if feed != nil {
		go func() {
			if err := svc.Sync.Run(syncCtx); err != nil && err != context.Canceled {
				logger.Error("实时同步退出", zap.Error(err))
			}
		}()
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, hub, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止实时同步
	syncCancel()

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	// 关闭 RabbitMQ 连接
	if pub != nil {
		pub.Close()
	}

	logger.Info("服务器已关闭")
}
